// internal/engine/pipeline/repository.go
package pipeline

import (
	"context"
	"time"

	"volunteer-engine/internal/models"
)

// CandidateFilter selects the members a recruitment run scores.
type CandidateFilter struct {
	TenantID                string
	IncludeActiveVolunteers bool
}

type MemberRepository interface {
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.MemberProfile, error)
	GetMember(ctx context.Context, tenantID, memberID string) (models.MemberProfile, error)
	ListVolunteers(ctx context.Context, tenantID string, includeInactive bool) ([]models.MemberProfile, error)
	PipelineCounts(ctx context.Context, tenantID string) (models.PipelineCounts, error)
}

type MinistryRepository interface {
	ListActiveMinistries(ctx context.Context, tenantID string) ([]models.Ministry, error)
}

// ActivityRepository serves per-member activity. since bounds every query from below.
type ActivityRepository interface {
	ListActiveAssignments(ctx context.Context, tenantID, memberID string, since time.Time) ([]models.Assignment, error)
	CountRecentCheckIns(ctx context.Context, tenantID, memberID string, since time.Time) (int, error)
	CountRecentDonations(ctx context.Context, tenantID, memberID string, since time.Time) (int, error)
}

// ProfileStore persists recruitment profiles. UpsertProfile must be idempotent for a
// given (runID, profile.MemberID).
type ProfileStore interface {
	UpsertProfile(ctx context.Context, run RunInfo, profile models.RecruitmentProfile) error
}

// RunInfo identifies the run a persisted profile came from.
type RunInfo struct {
	RunID         string    `json:"runId"`
	TenantID      string    `json:"tenantId"`
	PolicyVersion string    `json:"policyVersion"`
	StartedAt     time.Time `json:"startedAt"`
}
