// Package errors provides the engine's error taxonomy and its mapping onto BPMN job errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	// per-member, recorded in the run's failure list
	ErrCodeDataUnavailable   ErrorCode = "DATA_UNAVAILABLE"
	ErrCodeFetchTimeout      ErrorCode = "FETCH_TIMEOUT"
	ErrCodeComputation       ErrorCode = "COMPUTATION_ERROR"
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// request-level
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeParseError     ErrorCode = "PARSE_ERROR"
	ErrCodeAnalysisFailed ErrorCode = "ANALYSIS_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is a structured application error. Cause keeps the wrapped error
// reachable through errors.Is / errors.As.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.Cause }

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError is the shape thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewDataUnavailableError reports a failed member, ministry or assignment fetch.
func NewDataUnavailableError(resource string, err error) *StandardError {
	return newError(ErrCodeDataUnavailable, fmt.Sprintf("%s unavailable", resource), errDetails(err), true, err)
}

// NewFetchTimeoutError reports a fetch that exceeded its per-member deadline.
func NewFetchTimeoutError(resource string, err error) *StandardError {
	return newError(ErrCodeFetchTimeout, fmt.Sprintf("%s fetch timed out", resource), errDetails(err), true, err)
}

func NewComputationError(details string) *StandardError {
	return newError(ErrCodeComputation, "Computation failed", details, false, nil)
}

func NewPersistenceFailedError(err error) *StandardError {
	return newError(ErrCodePersistenceFailed, "Failed to persist recruitment profile", errDetails(err), true, err)
}

// NewInvalidInputError rejects a request before any work starts.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewParseError(details string, err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse input", details, false, err)
}

// NewAnalysisFailedError reports a run that could not produce a result at all.
func NewAnalysisFailedError(stage string, err error) *StandardError {
	return newError(ErrCodeAnalysisFailed, fmt.Sprintf("Analysis failed during %s", stage), errDetails(err), true, err)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// As returns the StandardError in err's chain, if any.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the StandardError in err's chain, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// BPMNErrorMapping maps internal codes to the error codes modelled in the BPMN processes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeDataUnavailable:   "VOLUNTEER_DATA_UNAVAILABLE",
	ErrCodeFetchTimeout:      "VOLUNTEER_FETCH_TIMEOUT",
	ErrCodeComputation:       "VOLUNTEER_COMPUTATION_ERROR",
	ErrCodePersistenceFailed: "VOLUNTEER_PERSISTENCE_FAILED",
	ErrCodeInvalidInput:      "VOLUNTEER_INVALID_INPUT",
	ErrCodeParseError:        "VOLUNTEER_PARSE_ERROR",
	ErrCodeAnalysisFailed:    "VOLUNTEER_ANALYSIS_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataUnavailable, ErrCodePersistenceFailed, ErrCodeAnalysisFailed:
		return 3
	case ErrCodeFetchTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeDataUnavailable, ErrCodeFetchTimeout:
		return "DATA"
	case ErrCodePersistenceFailed:
		return "PERSISTENCE"
	case ErrCodeInvalidInput, ErrCodeParseError:
		return "VALIDATION"
	case ErrCodeComputation, ErrCodeAnalysisFailed:
		return "ANALYSIS"
	default:
		return "OTHER"
	}
}
