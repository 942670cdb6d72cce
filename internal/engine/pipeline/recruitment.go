// internal/engine/pipeline/recruitment.go
package pipeline

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "volunteer-engine/internal/common/errors"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/onboarding"
	"volunteer-engine/internal/engine/scoring"
	"volunteer-engine/internal/models"
)

// DefaultMinScore applies when a filter leaves MinScore unset.
const DefaultMinScore = 40

const (
	BarrierNeedsAssessment        = "needs spiritual assessment"
	BarrierLimitedExperience      = "limited experience"
	BarrierAvailabilityUndefined  = "availability undefined"
	BarrierBackgroundCheckPending = "background check pending"
)

var nextActions = map[models.Readiness][]string{
	models.ReadinessReady: {
		"Contact for a direct ministry invitation",
		"Schedule an orientation meeting",
	},
	models.ReadinessDeveloping: {
		"Invite to ministry events as an observer",
		"Offer supplemental training",
	},
}

var defaultNextActions = []string{
	"Start the basic development track",
	"Assign a mentor for growth",
}

// RecruitmentFilter scopes a recruitment run.
type RecruitmentFilter struct {
	TenantID                string `json:"tenantId" validate:"required"`
	TargetMemberID          string `json:"targetMemberId,omitempty"`
	IncludeActiveVolunteers bool   `json:"includeActiveVolunteers"`
	MinScore                *int   `json:"minScore,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (f RecruitmentFilter) minScore() int {
	if f.MinScore == nil {
		return DefaultMinScore
	}
	return *f.MinScore
}

type RecruitmentSummary struct {
	TotalMembersAnalyzed    int                                `json:"totalMembersAnalyzed"`
	QualifiedCandidates     int                                `json:"qualifiedCandidates"`
	ReadyForRecruitment     int                                `json:"readyForRecruitment"`
	DevelopingCandidates    int                                `json:"developingCandidates"`
	HighLeadershipPotential int                                `json:"highLeadershipPotential"`
	AverageRecruitmentScore int                                `json:"averageRecruitmentScore"`
	ByReadiness             map[models.Readiness]int           `json:"byReadiness"`
	ByLeadership            map[models.LeadershipPotential]int `json:"byLeadership"`
	FailureCount            int                                `json:"failureCount"`
}

type RecruitmentResult struct {
	RunInfo
	MinScore int                         `json:"minScore"`
	Summary  RecruitmentSummary          `json:"summary"`
	Profiles []models.RecruitmentProfile `json:"profiles"`
	Insights RecruitmentInsights         `json:"insights"`
	Failures []models.MemberFailure      `json:"failures"`
}

// memberOutcome is one pool slot. A profile that failed to persist carries both the
// profile and its persist failure.
type memberOutcome struct {
	profile   *models.RecruitmentProfile
	failures  []models.MemberFailure
	qualified bool
}

// RunRecruitmentAnalysis scores every candidate in filter and returns the qualified
// profiles. Member-level failures are reported in the result and never abort the run.
func (e *Engine) RunRecruitmentAnalysis(ctx context.Context, filter RecruitmentFilter) (*RecruitmentResult, error) {
	if err := e.validate.Struct(filter); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	started := time.Now()
	ctx, span, run := e.startRun(ctx, KindRecruitment, filter.TenantID)
	result, err := e.runRecruitment(ctx, run, filter)
	e.finishRun(span, KindRecruitment, started, err)
	return result, err
}

func (e *Engine) runRecruitment(ctx context.Context, run RunInfo, filter RecruitmentFilter) (*RecruitmentResult, error) {
	log := e.log.WithFields(map[string]interface{}{"runId": run.RunID, "tenantId": run.TenantID, "kind": KindRecruitment})
	minScore := filter.minScore()

	failures := []models.MemberFailure{}
	candidates, targetFailure, err := e.candidates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if targetFailure != nil {
		e.recorder.MemberFailed(KindRecruitment, string(targetFailure.Stage), targetFailure.Code)
		log.Warn("target member unavailable", map[string]interface{}{"memberId": targetFailure.MemberID, "error": targetFailure.Reason})
		failures = append(failures, *targetFailure)
	}

	ministries, err := e.deps.Ministries.ListActiveMinistries(ctx, filter.TenantID)
	if err != nil {
		return nil, apperrors.NewDataUnavailableError("ministries", err)
	}

	log.Info("recruitment analysis started", map[string]interface{}{
		"candidates": len(candidates),
		"ministries": len(ministries),
		"minScore":   minScore,
	})

	outcomes := make([]memberOutcome, len(candidates))
	g := new(errgroup.Group)
	g.SetLimit(e.policy.Pipeline.Concurrency)
	for i := range candidates {
		g.Go(func() error {
			outcomes[i] = e.processCandidate(ctx, run, candidates[i], ministries, minScore, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewAnalysisFailedError(KindRecruitment, err)
	}

	profiles := make([]models.RecruitmentProfile, 0, len(outcomes))
	for _, o := range outcomes {
		failures = append(failures, o.failures...)
		if o.profile != nil && o.qualified {
			profiles = append(profiles, *o.profile)
		}
	}
	sortProfiles(profiles)
	sortFailures(failures)

	result := &RecruitmentResult{
		RunInfo:  run,
		MinScore: minScore,
		Summary:  summarizeRecruitment(len(candidates), profiles, failures),
		Profiles: profiles,
		Insights: e.recruitmentInsights(profiles),
		Failures: failures,
	}

	log.Info("recruitment analysis completed", map[string]interface{}{
		"analyzed":  result.Summary.TotalMembersAnalyzed,
		"qualified": result.Summary.QualifiedCandidates,
		"failures":  result.Summary.FailureCount,
		"average":   result.Summary.AverageRecruitmentScore,
	})
	return result, nil
}

// candidates returns the members to score. A failed target lookup is returned as a
// member failure so the run still completes.
func (e *Engine) candidates(ctx context.Context, filter RecruitmentFilter) ([]models.MemberProfile, *models.MemberFailure, error) {
	if filter.TargetMemberID == "" {
		members, err := e.deps.Members.ListCandidates(ctx, CandidateFilter{
			TenantID:                filter.TenantID,
			IncludeActiveVolunteers: filter.IncludeActiveVolunteers,
		})
		if err != nil {
			return nil, nil, apperrors.NewDataUnavailableError("members", err)
		}
		if filter.IncludeActiveVolunteers {
			return members, nil, nil
		}
		out := make([]models.MemberProfile, 0, len(members))
		for _, m := range members {
			if !m.IsActiveVolunteer {
				out = append(out, m)
			}
		}
		return out, nil, nil
	}

	mctx, cancel := context.WithTimeout(ctx, e.policy.Pipeline.MemberTimeout)
	defer cancel()
	member, err := e.deps.Members.GetMember(mctx, filter.TenantID, filter.TargetMemberID)
	if err != nil {
		stdErr := fetchError("member", err)
		if mctx.Err() == context.DeadlineExceeded {
			stdErr = apperrors.NewFetchTimeoutError("member", err)
		}
		return nil, &models.MemberFailure{
			MemberID: filter.TargetMemberID,
			Stage:    models.StageFetch,
			Code:     string(stdErr.Code),
			Reason:   stdErr.Error(),
		}, nil
	}
	if member.IsActiveVolunteer && !filter.IncludeActiveVolunteers {
		return nil, nil, nil
	}
	return []models.MemberProfile{member}, nil, nil
}

func (e *Engine) processCandidate(ctx context.Context, run RunInfo, member models.MemberProfile, ministries []models.Ministry, minScore int, log logger.Logger) memberOutcome {
	fail := func(stage models.FailureStage, err *apperrors.StandardError) models.MemberFailure {
		e.recorder.MemberFailed(KindRecruitment, string(stage), string(err.Code))
		log.Warn("member failed", map[string]interface{}{
			"memberId": member.ID,
			"stage":    string(stage),
			"code":     string(err.Code),
			"error":    err.Error(),
		})
		return models.MemberFailure{MemberID: member.ID, Stage: stage, Code: string(err.Code), Reason: err.Error()}
	}

	activity, stdErr := e.fetchActivity(ctx, run, member.ID)
	if stdErr != nil {
		return memberOutcome{failures: []models.MemberFailure{fail(models.StageFetch, stdErr)}}
	}

	scored := e.scorer.Score(member, activity)
	for _, w := range scored.Warnings {
		log.Warn("neutral value used", map[string]interface{}{"memberId": w.MemberID, "field": w.Field, "message": w.Message})
	}
	if scored.Score < minScore {
		e.recorder.MemberProcessed(KindRecruitment, "below_threshold")
		return memberOutcome{}
	}

	profile, stdErr := e.buildProfile(member, scored, ministries)
	if stdErr != nil {
		return memberOutcome{failures: []models.MemberFailure{fail(models.StageScore, stdErr)}}
	}

	out := memberOutcome{profile: &profile, qualified: true}
	if e.deps.Store != nil {
		pctx, cancel := context.WithTimeout(ctx, e.policy.Pipeline.MemberTimeout)
		err := e.deps.Store.UpsertProfile(pctx, run, profile)
		cancel()
		if err != nil {
			out.failures = append(out.failures, fail(models.StagePersist, apperrors.NewPersistenceFailedError(err)))
		}
	}
	e.recorder.MemberProcessed(KindRecruitment, "qualified")
	return out
}

// fetchActivity loads both activity counts under one per-member deadline.
func (e *Engine) fetchActivity(ctx context.Context, run RunInfo, memberID string) (models.ActivityCounts, *apperrors.StandardError) {
	mctx, cancel := context.WithTimeout(ctx, e.policy.Pipeline.MemberTimeout)
	defer cancel()

	var counts models.ActivityCounts
	g, gctx := errgroup.WithContext(mctx)
	g.Go(func() error {
		n, err := e.deps.Activity.CountRecentCheckIns(gctx, run.TenantID, memberID, run.StartedAt.Add(-e.policy.Pipeline.CheckInWindow))
		counts.RecentCheckIns = n
		return err
	})
	g.Go(func() error {
		n, err := e.deps.Activity.CountRecentDonations(gctx, run.TenantID, memberID, run.StartedAt.Add(-e.policy.Pipeline.DonationWindow))
		counts.RecentDonations = n
		return err
	})
	if err := g.Wait(); err != nil {
		if mctx.Err() == context.DeadlineExceeded {
			return counts, apperrors.NewFetchTimeoutError("activity", err)
		}
		return counts, fetchError("activity", err)
	}
	return counts, nil
}

func (e *Engine) buildProfile(member models.MemberProfile, scored scoring.Result, ministries []models.Ministry) (models.RecruitmentProfile, *apperrors.StandardError) {
	score := scored.Score
	readiness := e.scorer.ClassifyReadiness(score)
	matches := e.matcher.Match(member, ministries)

	target := onboarding.GeneralTarget()
	if len(matches) > 0 {
		target = onboarding.TargetFromMatch(matches[0])
	}
	path, err := e.generator.Generate(member, target)
	if err == nil {
		err = onboarding.Validate(path)
	}
	if err != nil {
		return models.RecruitmentProfile{}, apperrors.NewComputationError(err.Error())
	}

	if matches == nil {
		matches = []models.MinistryMatch{}
	}
	return models.RecruitmentProfile{
		MemberID:                 member.ID,
		MemberName:               member.DisplayName(),
		RecruitmentScore:         score,
		ScoreBreakdown:           scored.Breakdown,
		Readiness:                readiness,
		LeadershipPotential:      e.scorer.ClassifyLeadership(member, score),
		RecommendedMinistries:    matches,
		OnboardingPath:           path,
		EstimatedOnboardingWeeks: onboarding.EstimatedWeeks(path),
		EngagementLevel:          scored.EngagementLevel,
		SpiritualMaturity:        scored.SpiritualMaturity,
		AvailabilityFactor:       scored.AvailabilityFactor,
		Barriers:                 e.barriers(member, matches),
		NextActions:              actionsFor(readiness),
	}, nil
}

func (e *Engine) barriers(member models.MemberProfile, matches []models.MinistryMatch) []string {
	barriers := []string{}
	if member.SpiritualGifts.IsEmpty() {
		barriers = append(barriers, BarrierNeedsAssessment)
	}
	experience := 1
	if member.ExperienceLevel != nil {
		experience = *member.ExperienceLevel
	}
	if experience < e.policy.Pipeline.LimitedExperienceBelow {
		barriers = append(barriers, BarrierLimitedExperience)
	}
	if !member.HasAvailabilityMatrix {
		barriers = append(barriers, BarrierAvailabilityUndefined)
	}
	if len(matches) > 0 && matches[0].RequiresBackgroundCheck && !member.HasBackgroundCheck() {
		barriers = append(barriers, BarrierBackgroundCheckPending)
	}
	return barriers
}

func actionsFor(r models.Readiness) []string {
	actions, ok := nextActions[r]
	if !ok {
		actions = defaultNextActions
	}
	return append([]string(nil), actions...)
}

func fetchError(resource string, err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.As(err); ok {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewFetchTimeoutError(resource, err)
	}
	return apperrors.NewDataUnavailableError(resource, err)
}

func sortProfiles(p []models.RecruitmentProfile) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].RecruitmentScore != p[j].RecruitmentScore {
			return p[i].RecruitmentScore > p[j].RecruitmentScore
		}
		return p[i].MemberID < p[j].MemberID
	})
}

func sortFailures(f []models.MemberFailure) {
	sort.SliceStable(f, func(i, j int) bool {
		if f[i].MemberID != f[j].MemberID {
			return f[i].MemberID < f[j].MemberID
		}
		return f[i].Stage < f[j].Stage
	})
}
