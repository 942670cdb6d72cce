// internal/workers/volunteer/run-recruitment-analysis/models.go
package runrecruitmentanalysis

import (
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/models"
)

type Input struct {
	TenantID                string `json:"tenantId"`
	TargetMemberID          string `json:"targetMemberId,omitempty"`
	IncludeActiveVolunteers bool   `json:"includeActiveVolunteers"`
	MinScore                *int   `json:"minScore,omitempty"`
}

func (i Input) filter() pipeline.RecruitmentFilter {
	return pipeline.RecruitmentFilter{
		TenantID:                i.TenantID,
		TargetMemberID:          i.TargetMemberID,
		IncludeActiveVolunteers: i.IncludeActiveVolunteers,
		MinScore:                i.MinScore,
	}
}

type Output struct {
	RunID         string                       `json:"runId"`
	PolicyVersion string                       `json:"policyVersion"`
	MinScore      int                          `json:"minScore"`
	HasCandidates bool                         `json:"hasCandidates"`
	Summary       pipeline.RecruitmentSummary  `json:"summary"`
	Insights      pipeline.RecruitmentInsights `json:"insights"`
	Profiles      []models.RecruitmentProfile  `json:"profiles,omitempty"`
	Failures      []models.MemberFailure       `json:"failures"`
}
