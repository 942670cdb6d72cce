// internal/workers/volunteer/run-workload-analysis/handler_test.go
package runworkloadanalysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-engine/internal/common/errors"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/engine/workload"
	"volunteer-engine/internal/models"
)

type fakeRunner struct {
	got    pipeline.WorkloadScope
	result *pipeline.WorkloadResult
	err    error
}

func (f *fakeRunner) RunWorkloadAnalysis(_ context.Context, scope pipeline.WorkloadScope) (*pipeline.WorkloadResult, error) {
	f.got = scope
	return f.result, f.err
}

func createTestResult() *pipeline.WorkloadResult {
	return &pipeline.WorkloadResult{
		RunInfo: pipeline.RunInfo{RunID: "run-7", TenantID: "church-1", PolicyVersion: "2024.1"},
		Result: workload.Result{
			Workloads: []models.WorkloadSnapshot{
				{MemberID: "m-1", WorkloadScore: 90, BurnoutRisk: models.BurnoutCritical},
				{MemberID: "m-2", WorkloadScore: 10, BurnoutRisk: models.BurnoutLow},
			},
			Recommendations: []models.BalancingRecommendation{
				{Type: models.RecommendRedistribute, Priority: models.PriorityHigh, AffectedMembers: []string{"m-1", "m-2"}},
				{Type: models.RecommendNewRecruitment, Priority: models.PriorityMedium},
			},
			Summary: workload.Summary{TotalVolunteers: 2, HighBurnoutRisk: 1, HighPriorityActions: 1},
		},
		Comparison: &workload.Comparison{Rank: 1, TotalVolunteers: 2},
	}
}

func newTestHandler(t *testing.T, cfg *Config, runner Runner) *Handler {
	t.Helper()
	h, err := NewHandler(cfg, runner, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

func TestExecute_MapsScopeAndResult(t *testing.T) {
	runner := &fakeRunner{result: createTestResult()}
	h := newTestHandler(t, LoadConfig(), runner)

	out, err := h.Execute(context.Background(), &Input{TenantID: "church-1", IncludeInactive: true, MemberID: "m-1"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.WorkloadScope{TenantID: "church-1", IncludeInactive: true, MemberID: "m-1"}, runner.got)
	assert.Equal(t, "run-7", out.RunID)
	assert.Len(t, out.Workloads, 2)
	assert.Len(t, out.Recommendations, 2)
	require.NotNil(t, out.Comparison)
	assert.Equal(t, 1, out.Comparison.Rank)
	assert.True(t, out.NeedsAttention)
}

func TestExecute_CapsRecommendations(t *testing.T) {
	h := newTestHandler(t, &Config{Timeout: LoadConfig().Timeout, MaxRecommendations: 1}, &fakeRunner{result: createTestResult()})

	out, err := h.Execute(context.Background(), &Input{TenantID: "church-1"})
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, models.RecommendRedistribute, out.Recommendations[0].Type)
	assert.Equal(t, 1, out.Summary.HighPriorityActions)
}

func TestExecute_CalmTeam(t *testing.T) {
	result := createTestResult()
	result.Summary = workload.Summary{TotalVolunteers: 2}
	h := newTestHandler(t, LoadConfig(), &fakeRunner{result: result})

	out, err := h.Execute(context.Background(), &Input{TenantID: "church-1"})
	require.NoError(t, err)
	assert.False(t, out.NeedsAttention)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		runErr    error
		wantCode  errors.ErrorCode
	}{
		{"not json", `[1, 2`, nil, errors.ErrCodeParseError},
		{"missing tenant", `{"memberId": "m-1"}`, nil, errors.ErrCodeInvalidInput},
		{"empty tenant", `{"tenantId": ""}`, nil, errors.ErrCodeInvalidInput},
		{"wrong type", `{"tenantId": "church-1", "includeInactive": "yes"}`, nil, errors.ErrCodeInvalidInput},
		{"run fails", `{"tenantId": "church-1"}`, errors.NewAnalysisFailedError("workload", assert.AnError), errors.ErrCodeAnalysisFailed},
		{"valid", `{"tenantId": "church-1", "includeInactive": true}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: createTestResult(), err: tt.runErr}
			h := newTestHandler(t, LoadConfig(), runner)

			out, err := h.run(context.Background(), tt.variables)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "run-7", out.RunID)
			assert.True(t, runner.got.IncludeInactive)
		})
	}
}
