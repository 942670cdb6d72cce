// internal/workers/volunteer/run-workload-analysis/handler.go
package runworkloadanalysis

import (
	"context"
	"encoding/json"
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
	TaskType = "run-workload-analysis"
)

type Runner interface {
	RunWorkloadAnalysis(ctx context.Context, scope pipeline.WorkloadScope) (*pipeline.WorkloadResult, error)
}

type Handler struct {
	config       *Config
	runner       Runner
	schema       *validation.Schema
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

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

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
		h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewParseError("encode output variables", err))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(start))
}

func (h *Handler) run(ctx context.Context, variables string) (*Output, error) {
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
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.runner.RunWorkloadAnalysis(ctx, input.scope())
	if err != nil {
		return nil, err
	}

	recs := result.Recommendations
	if h.config.MaxRecommendations > 0 && len(recs) > h.config.MaxRecommendations {
		recs = recs[:h.config.MaxRecommendations]
	}

	h.logger.Info("workload analysis completed", map[string]interface{}{
		"runId":           result.RunID,
		"tenantId":        result.TenantID,
		"volunteers":      result.Summary.TotalVolunteers,
		"highBurnoutRisk": result.Summary.HighBurnoutRisk,
		"recommendations": len(result.Recommendations),
		"failures":        len(result.Failures),
	})

	return &Output{
		RunID:           result.RunID,
		PolicyVersion:   result.PolicyVersion,
		Workloads:       result.Workloads,
		Recommendations: recs,
		Summary:         result.Summary,
		Insights:        result.Insights,
		Comparison:      result.Comparison,
		Failures:        result.Failures,
		NeedsAttention:  result.Summary.HighBurnoutRisk > 0 || result.Summary.HighPriorityActions > 0,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input is required")
	}
	return h.execute(ctx, input)
}
