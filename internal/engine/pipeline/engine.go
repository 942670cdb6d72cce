// internal/engine/pipeline/engine.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/matching"
	"volunteer-engine/internal/engine/onboarding"
	"volunteer-engine/internal/engine/policy"
	"volunteer-engine/internal/engine/scoring"
	"volunteer-engine/internal/engine/workload"
)

const (
	KindRecruitment = "recruitment"
	KindWorkload    = "workload"
)

// Recorder receives run and member outcomes for metrics.
type Recorder interface {
	RunCompleted(kind, status string, duration time.Duration)
	MemberProcessed(kind, outcome string)
	MemberFailed(kind, stage, code string)
	BurnoutDistribution(tenantID string, dist workload.RiskDistribution)
}

type noopRecorder struct{}

func (noopRecorder) RunCompleted(string, string, time.Duration) {}
func (noopRecorder) MemberProcessed(string, string) {}
func (noopRecorder) MemberFailed(string, string, string) {}
func (noopRecorder) BurnoutDistribution(string, workload.RiskDistribution) {}

// Dependencies are the data collaborators of an Engine. Store may be nil, in which
// case profiles are computed but not persisted.
type Dependencies struct {
	Members    MemberRepository
	Ministries MinistryRepository
	Activity   ActivityRepository
	Store      ProfileStore
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func WithRunIDs(next func() string) Option {
	return func(e *Engine) { e.newRunID = next }
}

// Engine composes the scorer, matcher, onboarding generator and workload balancer
// over the repositories. Each Run call owns its run ID, clock reading and failure
// list, so concurrent runs never share state.
type Engine struct {
	deps   Dependencies
	policy policy.Policy

	scorer    *scoring.Scorer
	matcher   *matching.Matcher
	generator *onboarding.Generator
	balancer  *workload.Balancer

	validate *validator.Validate
	tracer   trace.Tracer
	log      logger.Logger
	recorder Recorder
	now      func() time.Time
	newRunID func() string
}

func New(deps Dependencies, p policy.Policy, log logger.Logger, opts ...Option) (*Engine, error) {
	if deps.Members == nil || deps.Ministries == nil || deps.Activity == nil {
		return nil, fmt.Errorf("member, ministry and activity repositories are required")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	e := &Engine{
		deps:      deps,
		policy:    p,
		scorer:    scoring.NewScorer(p),
		matcher:   matching.NewMatcher(p),
		generator: onboarding.NewGenerator(),
		balancer:  workload.NewBalancer(p),
		validate:  validator.New(),
		tracer:    otel.Tracer("volunteer-engine/pipeline"),
		log:       log.WithFields(map[string]interface{}{"component": "pipeline", "policyVersion": p.Version}),
		recorder:  noopRecorder{},
		now:       func() time.Time { return time.Now().UTC() },
		newRunID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Policy() policy.Policy { return e.policy }

func (e *Engine) startRun(ctx context.Context, kind, tenantID string) (context.Context, trace.Span, RunInfo) {
	run := RunInfo{
		RunID:         e.newRunID(),
		TenantID:      tenantID,
		PolicyVersion: e.policy.Version,
		StartedAt:     e.now(),
	}
	ctx, span := e.tracer.Start(ctx, "pipeline."+kind)
	return ctx, span, run
}

func (e *Engine) finishRun(span trace.Span, kind string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	e.recorder.RunCompleted(kind, status, time.Since(started))
	span.End()
}
