// Package policy holds every tuning constant used by the scoring, matching and workload
// engines. A Policy is versioned so results can be traced to the weights that produced them.
package policy

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"volunteer-engine/internal/models"
)

const DefaultVersion = "2024.1"

type Policy struct {
	Version    string              `json:"version" mapstructure:"version" yaml:"version" validate:"required"`
	Scoring    ScoringWeights      `json:"scoring" mapstructure:"scoring" yaml:"scoring"`
	Readiness  ReadinessThresholds `json:"readiness" mapstructure:"readiness" yaml:"readiness"`
	Leadership LeadershipWeights   `json:"leadership" mapstructure:"leadership" yaml:"leadership"`
	Matching   MatchingWeights     `json:"matching" mapstructure:"matching" yaml:"matching"`
	Staffing   models.StaffingRule `json:"staffing" mapstructure:"staffing" yaml:"staffing"`
	Workload   WorkloadPolicy      `json:"workload" mapstructure:"workload" yaml:"workload"`
	Pipeline   PipelinePolicy      `json:"pipeline" mapstructure:"pipeline" yaml:"pipeline"`
}

// ScoringWeights drive the five recruitment sub-scores. Caps must sum to at most 100.
type ScoringWeights struct {
	GiftWeight    int `json:"giftWeight" mapstructure:"gift_weight" yaml:"gift_weight" validate:"gte=0"`
	CallingBonus  int `json:"callingBonus" mapstructure:"calling_bonus" yaml:"calling_bonus" validate:"gte=0"`
	PassionWeight int `json:"passionWeight" mapstructure:"passion_weight" yaml:"passion_weight" validate:"gte=0"`
	SpiritualCap  int `json:"spiritualCap" mapstructure:"spiritual_cap" yaml:"spiritual_cap" validate:"gte=0"`

	MatrixBonus     int `json:"matrixBonus" mapstructure:"matrix_bonus" yaml:"matrix_bonus" validate:"gte=0"`
	CheckInWeight   int `json:"checkInWeight" mapstructure:"check_in_weight" yaml:"check_in_weight" validate:"gte=0"`
	CheckInCap      int `json:"checkInCap" mapstructure:"check_in_cap" yaml:"check_in_cap" validate:"gte=0"`
	AvailabilityCap int `json:"availabilityCap" mapstructure:"availability_cap" yaml:"availability_cap" validate:"gte=0"`

	ExperienceWeight int `json:"experienceWeight" mapstructure:"experience_weight" yaml:"experience_weight" validate:"gte=0"`
	SkillWeight      int `json:"skillWeight" mapstructure:"skill_weight" yaml:"skill_weight" validate:"gte=0"`
	SkillCap         int `json:"skillCap" mapstructure:"skill_cap" yaml:"skill_cap" validate:"gte=0"`
	ExperienceCap    int `json:"experienceCap" mapstructure:"experience_cap" yaml:"experience_cap" validate:"gte=0"`

	LeadershipFactor float64 `json:"leadershipFactor" mapstructure:"leadership_factor" yaml:"leadership_factor" validate:"gte=0"`
	LeadershipCap    int     `json:"leadershipCap" mapstructure:"leadership_cap" yaml:"leadership_cap" validate:"gte=0"`

	ActiveVolunteerEngagement int `json:"activeVolunteerEngagement" mapstructure:"active_volunteer_engagement" yaml:"active_volunteer_engagement" validate:"gte=0"`
	DonationWeight            int `json:"donationWeight" mapstructure:"donation_weight" yaml:"donation_weight" validate:"gte=0"`
	EngagementCap             int `json:"engagementCap" mapstructure:"engagement_cap" yaml:"engagement_cap" validate:"gte=0"`

	EngagementLevelFactor   float64 `json:"engagementLevelFactor" mapstructure:"engagement_level_factor" yaml:"engagement_level_factor" validate:"gte=0,lte=1"`
	SpiritualMaturityFactor int     `json:"spiritualMaturityFactor" mapstructure:"spiritual_maturity_factor" yaml:"spiritual_maturity_factor" validate:"gte=0"`
}

func (w ScoringWeights) MaxScore() int {
	return w.SpiritualCap + w.AvailabilityCap + w.ExperienceCap + w.LeadershipCap + w.EngagementCap
}

// ReadinessThresholds are inclusive lower bounds, validated strictly descending.
type ReadinessThresholds struct {
	Ready         int `json:"ready" mapstructure:"ready" yaml:"ready" validate:"gt=0,lte=100"`
	Developing    int `json:"developing" mapstructure:"developing" yaml:"developing" validate:"gt=0,lte=100"`
	NeedsTraining int `json:"needsTraining" mapstructure:"needs_training" yaml:"needs_training" validate:"gt=0,lte=100"`
}

type LeadershipWeights struct {
	ReadinessWeight     int      `json:"readinessWeight" mapstructure:"readiness_weight" yaml:"readiness_weight" validate:"gte=0"`
	ExperienceWeight    int      `json:"experienceWeight" mapstructure:"experience_weight" yaml:"experience_weight" validate:"gte=0"`
	CallingBonus        int      `json:"callingBonus" mapstructure:"calling_bonus" yaml:"calling_bonus" validate:"gte=0"`
	PersonalityBonus    int      `json:"personalityBonus" mapstructure:"personality_bonus" yaml:"personality_bonus" validate:"gte=0"`
	PersonalityKeywords []string `json:"personalityKeywords" mapstructure:"personality_keywords" yaml:"personality_keywords" validate:"dive,required"`
	HighScoreAbove      int      `json:"highScoreAbove" mapstructure:"high_score_above" yaml:"high_score_above" validate:"gte=0,lte=100"`
	HighScoreBonus      int      `json:"highScoreBonus" mapstructure:"high_score_bonus" yaml:"high_score_bonus" validate:"gte=0"`
	MidScoreAbove       int      `json:"midScoreAbove" mapstructure:"mid_score_above" yaml:"mid_score_above" validate:"gte=0,lte=100"`
	MidScoreBonus       int      `json:"midScoreBonus" mapstructure:"mid_score_bonus" yaml:"mid_score_bonus" validate:"gte=0"`
	High                int      `json:"high" mapstructure:"high" yaml:"high" validate:"gt=0"`
	Medium              int      `json:"medium" mapstructure:"medium" yaml:"medium" validate:"gt=0"`
	Low                 int      `json:"low" mapstructure:"low" yaml:"low" validate:"gt=0"`
}

type MatchingWeights struct {
	PassionBonus       int     `json:"passionBonus" mapstructure:"passion_bonus" yaml:"passion_bonus" validate:"gte=0"`
	GiftWeight         int     `json:"giftWeight" mapstructure:"gift_weight" yaml:"gift_weight" validate:"gte=0"`
	UrgencyCap         int     `json:"urgencyCap" mapstructure:"urgency_cap" yaml:"urgency_cap" validate:"gte=0"`
	// MinScore is exclusive: a match must score strictly above it.
	MinScore           float64 `json:"minScore" mapstructure:"min_score" yaml:"min_score" validate:"gte=0"`
	MaxResults         int     `json:"maxResults" mapstructure:"max_results" yaml:"max_results" validate:"gt=0"`
	// Urgency is MEDIUM below this volunteer count; zero volunteers is always HIGH.
	MediumUrgencyBelow int     `json:"mediumUrgencyBelow" mapstructure:"medium_urgency_below" yaml:"medium_urgency_below" validate:"gte=1"`
}

type WorkloadPolicy struct {
	CurrentWeight int `json:"currentWeight" mapstructure:"current_weight" yaml:"current_weight" validate:"gte=0"`
	CurrentCap    int `json:"currentCap" mapstructure:"current_cap" yaml:"current_cap" validate:"gte=0"`
	WeeklyWeight  int `json:"weeklyWeight" mapstructure:"weekly_weight" yaml:"weekly_weight" validate:"gte=0"`
	WeeklyCap     int `json:"weeklyCap" mapstructure:"weekly_cap" yaml:"weekly_cap" validate:"gte=0"`
	MonthlyWeight int `json:"monthlyWeight" mapstructure:"monthly_weight" yaml:"monthly_weight" validate:"gte=0"`
	MonthlyCap    int `json:"monthlyCap" mapstructure:"monthly_cap" yaml:"monthly_cap" validate:"gte=0"`

	// Inclusive lower bounds, validated strictly ascending.
	Medium   int `json:"medium" mapstructure:"medium" yaml:"medium" validate:"gt=0,lte=100"`
	High     int `json:"high" mapstructure:"high" yaml:"high" validate:"gt=0,lte=100"`
	Critical int `json:"critical" mapstructure:"critical" yaml:"critical" validate:"gt=0,lte=100"`

	WeeklyWindow  time.Duration `json:"weeklyWindow" mapstructure:"weekly_window" yaml:"weekly_window" validate:"gt=0"`
	MonthlyWindow time.Duration `json:"monthlyWindow" mapstructure:"monthly_window" yaml:"monthly_window" validate:"gt=0"`

	RestMonthlyAbove          int           `json:"restMonthlyAbove" mapstructure:"rest_monthly_above" yaml:"rest_monthly_above" validate:"gte=0"`
	RestRecentWithin          time.Duration `json:"restRecentWithin" mapstructure:"rest_recent_within" yaml:"rest_recent_within" validate:"gt=0"`
	UnderutilizedMonthlyBelow int           `json:"underutilizedMonthlyBelow" mapstructure:"underutilized_monthly_below" yaml:"underutilized_monthly_below" validate:"gte=0"`
	MaxRedistributeMembers    int           `json:"maxRedistributeMembers" mapstructure:"max_redistribute_members" yaml:"max_redistribute_members" validate:"gte=0"`
	MaxPeersPerMember         int           `json:"maxPeersPerMember" mapstructure:"max_peers_per_member" yaml:"max_peers_per_member" validate:"gte=0"`
	InsightSize               int           `json:"insightSize" mapstructure:"insight_size" yaml:"insight_size" validate:"gt=0"`
}

func (w WorkloadPolicy) MaxScore() int {
	return w.CurrentCap + w.WeeklyCap + w.MonthlyCap
}

type PipelinePolicy struct {
	Concurrency            int           `json:"concurrency" mapstructure:"concurrency" yaml:"concurrency" validate:"gt=0,lte=100"`
	MemberTimeout          time.Duration `json:"memberTimeout" mapstructure:"member_timeout" yaml:"member_timeout" validate:"gt=0"`
	CheckInWindow          time.Duration `json:"checkInWindow" mapstructure:"check_in_window" yaml:"check_in_window" validate:"gt=0"`
	DonationWindow         time.Duration `json:"donationWindow" mapstructure:"donation_window" yaml:"donation_window" validate:"gt=0"`
	LimitedExperienceBelow int           `json:"limitedExperienceBelow" mapstructure:"limited_experience_below" yaml:"limited_experience_below" validate:"gte=0"`
	InsightSize            int           `json:"insightSize" mapstructure:"insight_size" yaml:"insight_size" validate:"gt=0"`

	// Pipeline metric flags, as fractions of all members.
	ProfileCompletionBelow float64 `json:"profileCompletionBelow" mapstructure:"profile_completion_below" yaml:"profile_completion_below" validate:"gte=0,lte=1"`
	AvailabilityBelow      float64 `json:"availabilityBelow" mapstructure:"availability_below" yaml:"availability_below" validate:"gte=0,lte=1"`
	AutomationReadyAbove   float64 `json:"automationReadyAbove" mapstructure:"automation_ready_above" yaml:"automation_ready_above" validate:"gte=0,lte=1"`
}

// Default returns the production policy.
func Default() Policy {
	return Policy{
		Version: DefaultVersion,
		Scoring: ScoringWeights{
			GiftWeight:    5,
			CallingBonus:  10,
			PassionWeight: 3,
			SpiritualCap:  30,

			MatrixBonus:     10,
			CheckInWeight:   2,
			CheckInCap:      10,
			AvailabilityCap: 25,

			ExperienceWeight: 2,
			SkillWeight:      2,
			SkillCap:         8,
			ExperienceCap:    20,

			LeadershipFactor: 1.5,
			LeadershipCap:    15,

			ActiveVolunteerEngagement: 5,
			DonationWeight:            3,
			EngagementCap:             10,

			EngagementLevelFactor:   0.8,
			SpiritualMaturityFactor: 10,
		},
		Readiness: ReadinessThresholds{Ready: 80, Developing: 60, NeedsTraining: 40},
		Leadership: LeadershipWeights{
			ReadinessWeight:     4,
			ExperienceWeight:    3,
			CallingBonus:        20,
			PersonalityBonus:    10,
			PersonalityKeywords: []string{"team", "leader"},
			HighScoreAbove:      80,
			HighScoreBonus:      10,
			MidScoreAbove:       60,
			MidScoreBonus:       5,
			High:                80,
			Medium:              60,
			Low:                 30,
		},
		Matching: MatchingWeights{
			PassionBonus:       50,
			GiftWeight:         10,
			UrgencyCap:         20,
			MinScore:           30,
			MaxResults:         5,
			MediumUrgencyBelow: 2,
		},
		Staffing: models.DefaultStaffingRule,
		Workload: WorkloadPolicy{
			CurrentWeight: 12,
			CurrentCap:    60,
			WeeklyWeight:  8,
			WeeklyCap:     24,
			MonthlyWeight: 2,
			MonthlyCap:    16,

			Medium:   50,
			High:     70,
			Critical: 85,

			WeeklyWindow:  7 * 24 * time.Hour,
			MonthlyWindow: 30 * 24 * time.Hour,

			RestMonthlyAbove:          6,
			RestRecentWithin:          7 * 24 * time.Hour,
			UnderutilizedMonthlyBelow: 2,
			MaxRedistributeMembers:    3,
			MaxPeersPerMember:         2,
			InsightSize:               3,
		},
		Pipeline: PipelinePolicy{
			Concurrency:            10,
			MemberTimeout:          5 * time.Second,
			CheckInWindow:          30 * 24 * time.Hour,
			DonationWindow:         90 * 24 * time.Hour,
			LimitedExperienceBelow: 3,
			InsightSize:            5,
			ProfileCompletionBelow: 0.7,
			AvailabilityBelow:      0.5,
			AutomationReadyAbove:   0.8,
		},
	}
}

var validate = validator.New()

// Validate checks field ranges and the ordering rules that keep every tier a partition.
func (p Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("policy %s: %w", p.Version, err)
	}
	if total := p.Scoring.MaxScore(); total > 100 {
		return fmt.Errorf("policy %s: scoring caps sum to %d, must be at most 100", p.Version, total)
	}
	r := p.Readiness
	if !(r.Ready > r.Developing && r.Developing > r.NeedsTraining) {
		return fmt.Errorf("policy %s: readiness thresholds must be strictly descending (ready %d, developing %d, needs_training %d)",
			p.Version, r.Ready, r.Developing, r.NeedsTraining)
	}
	l := p.Leadership
	if !(l.High > l.Medium && l.Medium > l.Low) {
		return fmt.Errorf("policy %s: leadership tiers must be strictly descending", p.Version)
	}
	if l.HighScoreAbove < l.MidScoreAbove {
		return fmt.Errorf("policy %s: leadership high score bonus threshold below mid threshold", p.Version)
	}
	w := p.Workload
	if !(w.Medium < w.High && w.High < w.Critical) {
		return fmt.Errorf("policy %s: burnout thresholds must be strictly ascending (medium %d, high %d, critical %d)",
			p.Version, w.Medium, w.High, w.Critical)
	}
	if total := w.MaxScore(); total > 100 {
		return fmt.Errorf("policy %s: workload caps sum to %d, must be at most 100", p.Version, total)
	}
	if w.WeeklyWindow > w.MonthlyWindow {
		return fmt.Errorf("policy %s: weekly window exceeds monthly window", p.Version)
	}
	return nil
}

// LoadFile overlays a YAML policy file on Default and validates the result.
func LoadFile(path string) (Policy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
