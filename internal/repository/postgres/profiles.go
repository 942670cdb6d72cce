// internal/repository/postgres/profiles.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/models"
)

const (
	upsertProfileQuery = `INSERT INTO recruitment_profiles
    (tenant_id, member_id, run_id, policy_version, recruitment_score, readiness, leadership_potential, profile, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (tenant_id, member_id) DO UPDATE SET
    run_id = EXCLUDED.run_id,
    policy_version = EXCLUDED.policy_version,
    recruitment_score = EXCLUDED.recruitment_score,
    readiness = EXCLUDED.readiness,
    leadership_potential = EXCLUDED.leadership_potential,
    profile = EXCLUDED.profile,
    updated_at = EXCLUDED.updated_at`

	insertHistoryQuery = `INSERT INTO recruitment_score_history
    (id, run_id, tenant_id, member_id, recruitment_score, readiness, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (run_id, member_id) DO NOTHING`
)

// HistoryID is the deterministic history row id for a member within a run, so a
// retried persist hits the same key.
func HistoryID(runID, memberID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(runID+"/"+memberID)).String()
}

// UpsertProfile replaces the member's latest profile and appends one history row per
// run, both in one transaction.
func (s *Store) UpsertProfile(ctx context.Context, run pipeline.RunInfo, profile models.RecruitmentProfile) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertProfileQuery,
		run.TenantID, profile.MemberID, run.RunID, run.PolicyVersion,
		profile.RecruitmentScore, string(profile.Readiness), string(profile.LeadershipPotential),
		body, run.StartedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert profile for %s: %w", profile.MemberID, err)
	}

	if _, err := tx.ExecContext(ctx, insertHistoryQuery,
		HistoryID(run.RunID, profile.MemberID), run.RunID, run.TenantID, profile.MemberID,
		profile.RecruitmentScore, string(profile.Readiness), run.StartedAt,
	); err != nil {
		return fmt.Errorf("failed to append score history for %s: %w", profile.MemberID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile for %s: %w", profile.MemberID, err)
	}
	return nil
}
