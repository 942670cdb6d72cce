package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/workload"
	"volunteer-engine/internal/models"
)

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

var errNotFound = errors.New("not found")

type fakeMembers struct {
	members []models.MemberProfile
	counts  models.PipelineCounts
	listErr error
	// hung members block GetMember until the context is done
	hung  map[string]bool
	calls atomic.Int32
}

func (f *fakeMembers) ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.MemberProfile, error) {
	f.calls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	// returns everyone so the engine's own volunteer filter is exercised
	return append([]models.MemberProfile(nil), f.members...), nil
}

func (f *fakeMembers) GetMember(ctx context.Context, tenantID, memberID string) (models.MemberProfile, error) {
	f.calls.Add(1)
	if f.hung[memberID] {
		<-ctx.Done()
		return models.MemberProfile{}, ctx.Err()
	}
	for _, m := range f.members {
		if m.ID == memberID {
			return m, nil
		}
	}
	return models.MemberProfile{}, errNotFound
}

func (f *fakeMembers) ListVolunteers(ctx context.Context, tenantID string, includeInactive bool) ([]models.MemberProfile, error) {
	f.calls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.MemberProfile
	for _, m := range f.members {
		if m.IsActiveVolunteer || includeInactive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembers) PipelineCounts(ctx context.Context, tenantID string) (models.PipelineCounts, error) {
	f.calls.Add(1)
	return f.counts, f.listErr
}

type fakeMinistries struct {
	ministries []models.Ministry
	err        error
}

func (f *fakeMinistries) ListActiveMinistries(ctx context.Context, tenantID string) ([]models.Ministry, error) {
	return f.ministries, f.err
}

type fakeActivity struct {
	checkIns    map[string]int
	donations   map[string]int
	assignments map[string][]models.Assignment
	failing     map[string]error
	// slow members block until their deadline passes
	slow  map[string]bool
	delay time.Duration

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (f *fakeActivity) wait(ctx context.Context, memberID string) error {
	if err, ok := f.failing[memberID]; ok {
		return err
	}
	if f.slow[memberID] {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return nil
}

func (f *fakeActivity) ListActiveAssignments(ctx context.Context, tenantID, memberID string, since time.Time) ([]models.Assignment, error) {
	if err := f.wait(ctx, memberID); err != nil {
		return nil, err
	}
	var out []models.Assignment
	for _, a := range f.assignments[memberID] {
		if !a.Date.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActivity) CountRecentCheckIns(ctx context.Context, tenantID, memberID string, since time.Time) (int, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		cur := f.maxInflight.Load()
		if n <= cur || f.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if err := f.wait(ctx, memberID); err != nil {
		return 0, err
	}
	return f.checkIns[memberID], nil
}

func (f *fakeActivity) CountRecentDonations(ctx context.Context, tenantID, memberID string, since time.Time) (int, error) {
	if err := f.wait(ctx, memberID); err != nil {
		return 0, err
	}
	return f.donations[memberID], nil
}

type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]models.RecruitmentProfile
	runs     map[string]string
	failFor  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[string]models.RecruitmentProfile{}, runs: map[string]string{}}
}

func (f *fakeStore) UpsertProfile(ctx context.Context, run RunInfo, profile models.RecruitmentProfile) error {
	if f.failFor[profile.MemberID] {
		return errors.New("connection reset")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.MemberID] = profile
	f.runs[profile.MemberID] = run.RunID
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	runs     []string
	failures []string
	burnout  map[string]workload.RiskDistribution
}

func (f *fakeRecorder) RunCompleted(kind, status string, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, kind+":"+status)
}

func (f *fakeRecorder) MemberProcessed(kind, outcome string) {}

func (f *fakeRecorder) MemberFailed(kind, stage, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, stage+":"+code)
}

func (f *fakeRecorder) BurnoutDistribution(tenantID string, dist workload.RiskDistribution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.burnout == nil {
		f.burnout = map[string]workload.RiskDistribution{}
	}
	f.burnout[tenantID] = dist
}
