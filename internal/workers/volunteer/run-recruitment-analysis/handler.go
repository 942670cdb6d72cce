// internal/workers/volunteer/run-recruitment-analysis/handler.go
package runrecruitmentanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"volunteer-engine/internal/common/errors"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/common/metrics"
	"volunteer-engine/internal/common/observability"
	"volunteer-engine/internal/common/validation"
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/pkg/registry"
)

const (
	TaskType = "run-recruitment-analysis"
)

// Runner is the part of the pipeline engine this worker drives.
type Runner interface {
	RunRecruitmentAnalysis(ctx context.Context, filter pipeline.RecruitmentFilter) (*pipeline.RecruitmentResult, error)
}

type Handler struct {
	config       *Config
	runner       Runner
	schema       *validation.Schema
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the worker. obs may be nil.
func NewHandler(config *Config, runner Runner, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	reg, err := registry.Default()
	if err != nil {
		return nil, err
	}
	schema, err := reg.InputSchema(TaskType)
	if err != nil {
		return nil, err
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		schema:       schema,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.decodeInput(job.Variables)
	if err == nil {
		var output *Output
		output, err = h.execute(ctx, input)
		if err == nil {
			err = h.completeJob(ctx, client, job, output)
		}
	}

	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
		h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(start))
}

func (h *Handler) decodeInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, errors.NewParseError("job variables are not a JSON object", err)
	}

	result, err := h.schema.Validate(doc)
	if err != nil {
		return nil, errors.NewParseError("job variables could not be validated", err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError("decode input", err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.runner.RunRecruitmentAnalysis(ctx, input.filter())
	if err != nil {
		return nil, err
	}

	h.logger.Info("recruitment analysis completed", map[string]interface{}{
		"runId":     result.RunID,
		"tenantId":  result.TenantID,
		"analyzed":  result.Summary.TotalMembersAnalyzed,
		"qualified": result.Summary.QualifiedCandidates,
		"failures":  len(result.Failures),
		"minScore":  result.MinScore,
		"policy":    result.PolicyVersion,
	})

	output := &Output{
		RunID:         result.RunID,
		PolicyVersion: result.PolicyVersion,
		MinScore:      result.MinScore,
		HasCandidates: len(result.Profiles) > 0,
		Summary:       result.Summary,
		Insights:      result.Insights,
		Failures:      result.Failures,
	}
	if h.config.IncludeProfiles {
		output.Profiles = result.Profiles
	}
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return errors.NewParseError("encode output variables", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		// The job stays activated until its timeout and is handed out again.
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s: input is required", TaskType))
	}
	return h.execute(ctx, input)
}
