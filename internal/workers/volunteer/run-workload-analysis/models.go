// internal/workers/volunteer/run-workload-analysis/models.go
package runworkloadanalysis

import (
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/engine/workload"
	"volunteer-engine/internal/models"
)

type Input struct {
	TenantID        string `json:"tenantId"`
	IncludeInactive bool   `json:"includeInactive"`
	MemberID        string `json:"memberId,omitempty"`
}

func (i Input) scope() pipeline.WorkloadScope {
	return pipeline.WorkloadScope{
		TenantID:        i.TenantID,
		IncludeInactive: i.IncludeInactive,
		MemberID:        i.MemberID,
	}
}

type Output struct {
	RunID           string                           `json:"runId"`
	PolicyVersion   string                           `json:"policyVersion"`
	Workloads       []models.WorkloadSnapshot        `json:"workloads"`
	Recommendations []models.BalancingRecommendation `json:"recommendations"`
	Summary         workload.Summary                 `json:"summary"`
	Insights        workload.Insights                `json:"insights"`
	Comparison      *workload.Comparison             `json:"comparison,omitempty"`
	Failures        []models.MemberFailure           `json:"failures"`
	NeedsAttention  bool                             `json:"needsAttention"`
}
