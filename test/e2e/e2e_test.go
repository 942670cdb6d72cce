//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-engine/internal/bootstrap"
	"volunteer-engine/internal/common/config"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/pipeline"
)

// Run with: go test -tags e2e ./test/e2e/ against a Postgres reachable through
// configs/config.yaml (and optionally Redis).
func TestRecruitmentAndWorkloadE2E(t *testing.T) {
	if os.Getenv("DB_USER") == "" {
		t.Skip("DB_USER not set, skipping end-to-end test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Engine.MigrateOnStart = true
	cfg.Engine.PersistProfiles = true

	rt, err := bootstrap.Open(ctx, cfg, bootstrap.Options{Registerer: prometheus.NewRegistry(), ReadyAttempts: 5}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer rt.Close()

	tenant := "e2e-" + uuid.NewString()
	seedTenant(t, ctx, rt.DB, tenant)
	defer cleanupTenant(t, rt.DB, tenant)

	// --- Recruitment ---
	rec, err := rt.Engine.RunRecruitmentAnalysis(ctx, pipeline.RecruitmentFilter{TenantID: tenant})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Summary.TotalMembersAnalyzed, "active volunteer must be excluded")
	assert.Empty(t, rec.Failures)

	var stored int
	require.NoError(t, rt.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recruitment_profiles WHERE tenant_id = $1 AND run_id = $2`, tenant, rec.RunID).Scan(&stored))
	assert.Equal(t, len(rec.Profiles), stored)

	var history int
	require.NoError(t, rt.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recruitment_score_history WHERE run_id = $1`, rec.RunID).Scan(&history))
	assert.Equal(t, len(rec.Profiles), history)

	// --- Workload ---
	wl, err := rt.Engine.RunWorkloadAnalysis(ctx, pipeline.WorkloadScope{TenantID: tenant, MemberID: "m-vol"})
	require.NoError(t, err)
	require.Len(t, wl.Workloads, 1)
	assert.Equal(t, 3, wl.Workloads[0].CurrentAssignments)
	require.NotNil(t, wl.Comparison)
	assert.Equal(t, 1, wl.Comparison.Rank)

	// --- Pipeline metrics ---
	m, err := rt.Engine.PipelineMetrics(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalMembers)
	assert.Equal(t, 1, m.CurrentVolunteers)
}

func seedTenant(t *testing.T, ctx context.Context, db *sql.DB, tenant string) {
	t.Helper()
	now := time.Now().UTC()
	stmts := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO members (id, tenant_id, first_name, last_name, spiritual_gifts, ministry_passions, skills,
		    spiritual_calling, personality_type, experience_level, leadership_readiness, has_spiritual_assessment, background_check_date)
		  VALUES ($1, $2, 'Ada', 'Lovelace', '["teaching","leadership"]', '["youth"]', '["planning"]',
		    'discipleship', 'team builder', 6, 7, true, $3)`, []interface{}{"m-ready", tenant, now.AddDate(0, -2, 0)}},
		{`INSERT INTO members (id, tenant_id, first_name, last_name) VALUES ($1, $2, 'New', 'Comer')`,
			[]interface{}{"m-new", tenant}},
		{`INSERT INTO members (id, tenant_id, first_name, last_name, skills) VALUES ($1, $2, 'Vera', 'Volunteer', '["sound"]')`,
			[]interface{}{"m-vol", tenant}},
		{`INSERT INTO volunteers (member_id, tenant_id, is_active, ministry_ids) VALUES ($1, $2, true, '["min-youth"]')`,
			[]interface{}{"m-vol", tenant}},
		{`INSERT INTO availability_matrices (member_id, tenant_id, availability_score) VALUES ($1, $2, 0.8)`,
			[]interface{}{"m-ready", tenant}},
		{`INSERT INTO ministries (id, tenant_id, name, category) VALUES ($1, $2, 'Youth Group', 'YOUTH')`,
			[]interface{}{"min-youth", tenant}},
		{`INSERT INTO check_ins (id, tenant_id, member_id, checked_in_at) VALUES ($1, $2, 'm-ready', $3)`,
			[]interface{}{uuid.NewString(), tenant, now.AddDate(0, 0, -3)}},
	}
	for i := 0; i < 3; i++ {
		stmts = append(stmts, struct {
			query string
			args  []interface{}
		}{
			`INSERT INTO assignments (id, tenant_id, member_id, ministry_id, date, status) VALUES ($1, $2, 'm-vol', 'min-youth', $3, 'ASSIGNED')`,
			[]interface{}{uuid.NewString(), tenant, now.AddDate(0, 0, i+1)},
		})
	}

	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s.query, s.args...)
		require.NoError(t, err, s.query)
	}
}

func cleanupTenant(t *testing.T, db *sql.DB, tenant string) {
	for _, table := range []string{
		"recruitment_score_history", "recruitment_profiles", "assignments", "check_ins", "donations",
		"ministries", "availability_matrices", "volunteers", "members",
	} {
		if _, err := db.Exec(`DELETE FROM `+table+` WHERE tenant_id = $1`, tenant); err != nil {
			t.Logf("cleanup %s: %v", table, err)
		}
	}
}
