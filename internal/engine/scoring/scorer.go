// internal/engine/scoring/scorer.go
package scoring

import (
	"math"
	"strings"

	"volunteer-engine/internal/engine/policy"
	"volunteer-engine/internal/models"
)

// neutralLevel is used when experience or leadership readiness was never recorded.
const neutralLevel = 1

// Warning flags a field that was missing and scored with its neutral value.
type Warning struct {
	MemberID string `json:"memberId"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// Result is the scorer output for one member.
type Result struct {
	Score              int                   `json:"score"`
	Breakdown          models.ScoreBreakdown `json:"breakdown"`
	EngagementLevel    int                   `json:"engagementLevel"`
	SpiritualMaturity  int                   `json:"spiritualMaturity"`
	AvailabilityFactor float64               `json:"availabilityFactor"`
	Warnings           []Warning             `json:"warnings,omitempty"`
}

// Scorer computes recruitment scores. It holds no per-member state and is safe for
// concurrent use.
type Scorer struct {
	weights    policy.ScoringWeights
	readiness  policy.ReadinessThresholds
	leadership policy.LeadershipWeights
}

func NewScorer(p policy.Policy) *Scorer {
	return &Scorer{
		weights:    p.Scoring,
		readiness:  p.Readiness,
		leadership: p.Leadership,
	}
}

// Score never fails. Missing values score neutral and are reported as warnings.
func (s *Scorer) Score(m models.MemberProfile, activity models.ActivityCounts) Result {
	var warnings []Warning
	warn := func(field, msg string) {
		warnings = append(warnings, Warning{MemberID: m.ID, Field: field, Message: msg})
	}

	experience := neutralLevel
	if m.ExperienceLevel != nil {
		experience = clampLevel(*m.ExperienceLevel)
	} else {
		warn("experienceLevel", "missing, scored as 1")
	}

	leadership := neutralLevel
	if m.LeadershipReadiness != nil {
		leadership = clampLevel(*m.LeadershipReadiness)
	} else {
		warn("leadershipReadiness", "missing, scored as 1")
	}

	availability := 0.0
	if m.AvailabilityScore != nil {
		availability = math.Max(0, *m.AvailabilityScore)
	} else {
		warn("availabilityScore", "missing, scored as 0")
	}

	w := s.weights
	b := models.ScoreBreakdown{
		Spiritual:    s.spiritual(m),
		Availability: s.availability(m, availability, activity.RecentCheckIns),
		Experience:   min(w.ExperienceCap, experience*w.ExperienceWeight+min(w.SkillCap, m.Skills.Len()*w.SkillWeight)),
		Leadership:   min(w.LeadershipCap, int(math.Floor(float64(leadership)*w.LeadershipFactor))),
		Engagement:   s.engagement(m, activity.RecentDonations),
	}

	total := b.Total()
	if total > 100 {
		total = 100
	}

	return Result{
		Score:              total,
		Breakdown:          b,
		EngagementLevel:    int(math.Round(float64(total) * w.EngagementLevelFactor)),
		SpiritualMaturity:  experience * w.SpiritualMaturityFactor,
		AvailabilityFactor: availability,
		Warnings:           warnings,
	}
}

func (s *Scorer) spiritual(m models.MemberProfile) int {
	w := s.weights
	raw := m.SpiritualGifts.Len()*w.GiftWeight + m.MinistryPassions.Len()*w.PassionWeight
	if m.HasCalling() {
		raw += w.CallingBonus
	}
	return min(w.SpiritualCap, raw)
}

func (s *Scorer) availability(m models.MemberProfile, availability float64, checkIns int) int {
	w := s.weights
	raw := int(math.Floor(availability))
	if m.HasAvailabilityMatrix {
		raw += w.MatrixBonus
	}
	raw += min(w.CheckInCap, max(0, checkIns)*w.CheckInWeight)
	return min(w.AvailabilityCap, raw)
}

func (s *Scorer) engagement(m models.MemberProfile, donations int) int {
	w := s.weights
	if m.IsActiveVolunteer {
		return min(w.EngagementCap, w.ActiveVolunteerEngagement)
	}
	return min(w.EngagementCap, max(0, donations)*w.DonationWeight)
}

// ClassifyReadiness buckets a recruitment score.
func (s *Scorer) ClassifyReadiness(score int) models.Readiness {
	switch {
	case score >= s.readiness.Ready:
		return models.ReadinessReady
	case score >= s.readiness.Developing:
		return models.ReadinessDeveloping
	case score >= s.readiness.NeedsTraining:
		return models.ReadinessNeedsTraining
	default:
		return models.ReadinessNotReady
	}
}

// ClassifyLeadership estimates leadership potential from the profile and its
// recruitment score. It is non-decreasing in readiness and experience.
func (s *Scorer) ClassifyLeadership(m models.MemberProfile, recruitmentScore int) models.LeadershipPotential {
	l := s.leadership

	readiness := neutralLevel
	if m.LeadershipReadiness != nil {
		readiness = clampLevel(*m.LeadershipReadiness)
	}
	experience := neutralLevel
	if m.ExperienceLevel != nil {
		experience = clampLevel(*m.ExperienceLevel)
	}

	points := readiness*l.ReadinessWeight + experience*l.ExperienceWeight
	if m.HasCalling() {
		points += l.CallingBonus
	}
	if hasAnyKeyword(m.PersonalityType, l.PersonalityKeywords) {
		points += l.PersonalityBonus
	}
	switch {
	case recruitmentScore > l.HighScoreAbove:
		points += l.HighScoreBonus
	case recruitmentScore > l.MidScoreAbove:
		points += l.MidScoreBonus
	}

	switch {
	case points >= l.High:
		return models.LeadershipHigh
	case points >= l.Medium:
		return models.LeadershipMedium
	case points >= l.Low:
		return models.LeadershipLow
	default:
		return models.LeadershipUnknown
	}
}

func hasAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func clampLevel(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
