// internal/engine/pipeline/workload.go
package pipeline

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "volunteer-engine/internal/common/errors"
	"volunteer-engine/internal/engine/policy"
	"volunteer-engine/internal/engine/workload"
	"volunteer-engine/internal/models"
)

// WorkloadScope scopes a workload run. MemberID optionally asks for that member's
// comparison against the rest of the volunteers.
type WorkloadScope struct {
	TenantID        string `json:"tenantId" validate:"required"`
	IncludeInactive bool   `json:"includeInactive"`
	MemberID        string `json:"memberId,omitempty"`
}

type WorkloadResult struct {
	RunInfo
	workload.Result
	Comparison *workload.Comparison  `json:"comparison,omitempty"`
	Failures   []models.MemberFailure `json:"failures"`
}

// RunWorkloadAnalysis snapshots every volunteer's load and derives rebalancing
// recommendations. Volunteers whose assignments cannot be fetched are left out of the
// analysis and reported in Failures.
func (e *Engine) RunWorkloadAnalysis(ctx context.Context, scope WorkloadScope) (*WorkloadResult, error) {
	if err := e.validate.Struct(scope); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	started := time.Now()
	ctx, span, run := e.startRun(ctx, KindWorkload, scope.TenantID)
	result, err := e.runWorkload(ctx, run, scope)
	e.finishRun(span, KindWorkload, started, err)
	return result, err
}

func (e *Engine) runWorkload(ctx context.Context, run RunInfo, scope WorkloadScope) (*WorkloadResult, error) {
	log := e.log.WithFields(map[string]interface{}{"runId": run.RunID, "tenantId": run.TenantID, "kind": KindWorkload})

	members, err := e.deps.Members.ListVolunteers(ctx, scope.TenantID, scope.IncludeInactive)
	if err != nil {
		return nil, apperrors.NewDataUnavailableError("volunteers", err)
	}
	ministries, err := e.deps.Ministries.ListActiveMinistries(ctx, scope.TenantID)
	if err != nil {
		return nil, apperrors.NewDataUnavailableError("ministries", err)
	}

	since := run.StartedAt.Add(-e.policy.Workload.MonthlyWindow)
	slots := make([]*workload.Volunteer, len(members))
	failures := make([]*models.MemberFailure, len(members))

	g := new(errgroup.Group)
	g.SetLimit(e.policy.Pipeline.Concurrency)
	for i := range members {
		g.Go(func() error {
			m := members[i]
			mctx, cancel := context.WithTimeout(ctx, e.policy.Pipeline.MemberTimeout)
			defer cancel()

			assignments, err := e.deps.Activity.ListActiveAssignments(mctx, scope.TenantID, m.ID, since)
			if err != nil {
				stdErr := fetchError("assignments", err)
				if mctx.Err() == context.DeadlineExceeded {
					stdErr = apperrors.NewFetchTimeoutError("assignments", err)
				}
				e.recorder.MemberFailed(KindWorkload, string(models.StageFetch), string(stdErr.Code))
				log.Warn("member failed", map[string]interface{}{"memberId": m.ID, "code": string(stdErr.Code), "error": stdErr.Error()})
				failures[i] = &models.MemberFailure{MemberID: m.ID, Stage: models.StageFetch, Code: string(stdErr.Code), Reason: stdErr.Error()}
				return nil
			}
			slots[i] = &workload.Volunteer{Member: m, Assignments: assignments}
			e.recorder.MemberProcessed(KindWorkload, "analyzed")
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewAnalysisFailedError(KindWorkload, err)
	}

	volunteers := make([]workload.Volunteer, 0, len(slots))
	failed := []models.MemberFailure{}
	for i := range slots {
		if slots[i] != nil {
			volunteers = append(volunteers, *slots[i])
		}
		if failures[i] != nil {
			failed = append(failed, *failures[i])
		}
	}
	sortFailures(failed)

	analysis := e.balancer.Analyze(volunteers, ministries, run.StartedAt)
	e.recorder.BurnoutDistribution(scope.TenantID, analysis.Summary.Distribution)

	result := &WorkloadResult{RunInfo: run, Result: analysis, Failures: failed}
	if scope.MemberID != "" {
		if c, ok := workload.Compare(analysis, scope.MemberID); ok {
			result.Comparison = &c
		}
	}

	log.Info("workload analysis completed", map[string]interface{}{
		"volunteers":      analysis.Summary.TotalVolunteers,
		"highRisk":        analysis.Summary.HighBurnoutRisk,
		"recommendations": analysis.Summary.RecommendationsCount,
		"failures":        len(failed),
	})
	return result, nil
}

type PipelineRecommendations struct {
	PrioritizeProfileCompletion bool `json:"prioritizeProfileCompletion"`
	FocusOnAvailability         bool `json:"focusOnAvailability"`
	ReadyForAutomation          bool `json:"readyForAutomation"`
}

// PipelineMetrics is the tenant-level view of recruitment pipeline health. Rates are
// whole percentages of the active member count.
type PipelineMetrics struct {
	models.PipelineCounts
	PotentialCandidates int                     `json:"potentialCandidates"`
	ConversionRate      int                     `json:"conversionRate"`
	ProfileCompleteness int                     `json:"profileCompleteness"`
	AvailabilityDefined int                     `json:"availabilityDefined"`
	Recommendations     PipelineRecommendations `json:"recommendations"`
}

func (e *Engine) PipelineMetrics(ctx context.Context, tenantID string) (*PipelineMetrics, error) {
	if tenantID == "" {
		return nil, apperrors.NewInvalidInputError("tenantId is required")
	}
	counts, err := e.deps.Members.PipelineCounts(ctx, tenantID)
	if err != nil {
		return nil, apperrors.NewDataUnavailableError("pipeline counts", err)
	}
	return computePipelineMetrics(counts, e.policy.Pipeline), nil
}

func computePipelineMetrics(c models.PipelineCounts, p policy.PipelinePolicy) *PipelineMetrics {
	m := &PipelineMetrics{
		PipelineCounts:      c,
		PotentialCandidates: max(0, c.TotalMembers-c.CurrentVolunteers),
	}
	if c.TotalMembers == 0 {
		return m
	}
	total := float64(c.TotalMembers)
	m.ConversionRate = percent(c.CurrentVolunteers, total)
	m.ProfileCompleteness = percent(c.MembersWithSpiritualGifts, total)
	m.AvailabilityDefined = percent(c.MembersWithAvailability, total)
	m.Recommendations = PipelineRecommendations{
		PrioritizeProfileCompletion: float64(c.MembersWithSpiritualGifts) < total*p.ProfileCompletionBelow,
		FocusOnAvailability:         float64(c.MembersWithAvailability) < total*p.AvailabilityBelow,
		ReadyForAutomation:          float64(c.MembersWithSpiritualGifts) > total*p.AutomationReadyAbove,
	}
	return m
}

func percent(n int, total float64) int {
	return int(math.Round(float64(n) / total * 100))
}
