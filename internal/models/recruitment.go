// internal/models/recruitment.go
package models

type Readiness string

const (
	ReadinessReady         Readiness = "READY"
	ReadinessDeveloping    Readiness = "DEVELOPING"
	ReadinessNeedsTraining Readiness = "NEEDS_TRAINING"
	ReadinessNotReady      Readiness = "NOT_READY"
)

type LeadershipPotential string

const (
	LeadershipHigh    LeadershipPotential = "HIGH"
	LeadershipMedium  LeadershipPotential = "MEDIUM"
	LeadershipLow     LeadershipPotential = "LOW"
	LeadershipUnknown LeadershipPotential = "UNKNOWN"
)

// Priority is shared by ministry urgency and recommendation priority.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Rank orders priorities for sorting, HIGH first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type StepType string

const (
	StepAssessment  StepType = "ASSESSMENT"
	StepTraining    StepType = "TRAINING"
	StepOrientation StepType = "ORIENTATION"
	StepMentorship  StepType = "MENTORSHIP"
	StepExperience  StepType = "EXPERIENCE"
)

type ScoreBreakdown struct {
	Spiritual    int `json:"spiritual"`
	Availability int `json:"availability"`
	Experience   int `json:"experience"`
	Leadership   int `json:"leadership"`
	Engagement   int `json:"engagement"`
}

func (b ScoreBreakdown) Total() int {
	return b.Spiritual + b.Availability + b.Experience + b.Leadership + b.Engagement
}

type MinistryMatch struct {
	MinistryID              string   `json:"ministryId"`
	MinistryName            string   `json:"ministryName"`
	MatchScore              float64  `json:"matchScore"`
	Reasoning               []string `json:"reasoning"`
	Urgency                 Priority `json:"urgency"`
	EstimatedTimeCommitment string   `json:"estimatedTimeCommitment"`
	RequiredPreparation     []string `json:"requiredPreparation"`
	RequiresBackgroundCheck bool     `json:"requiresBackgroundCheck"`
}

type OnboardingStep struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Type              StepType `json:"type"`
	Prerequisite      string   `json:"prerequisite,omitempty"`
	AutoComplete      bool     `json:"autoComplete"`
	EstimatedDuration string   `json:"estimatedDuration"`
	EstimatedWeeks    float64  `json:"estimatedWeeks"`
	Resources         []string `json:"resources"`
}

type RecruitmentProfile struct {
	MemberID                 string              `json:"memberId"`
	MemberName               string              `json:"memberName"`
	RecruitmentScore         int                 `json:"recruitmentScore"`
	ScoreBreakdown           ScoreBreakdown      `json:"scoreBreakdown"`
	Readiness                Readiness           `json:"readiness"`
	LeadershipPotential      LeadershipPotential `json:"leadershipPotential"`
	RecommendedMinistries    []MinistryMatch     `json:"recommendedMinistries"`
	OnboardingPath           []OnboardingStep    `json:"onboardingPath"`
	EstimatedOnboardingWeeks float64             `json:"estimatedOnboardingWeeks"`
	EngagementLevel          int                 `json:"engagementLevel"`
	SpiritualMaturity        int                 `json:"spiritualMaturity"`
	AvailabilityFactor       float64             `json:"availabilityFactor"`
	Barriers                 []string            `json:"barriers"`
	NextActions              []string            `json:"nextActions"`
}

// FailureStage names where a member's work stopped.
type FailureStage string

const (
	StageFetch   FailureStage = "fetch"
	StageScore   FailureStage = "score"
	StagePersist FailureStage = "persist"
)

// MemberFailure records one member whose work could not complete in a run.
type MemberFailure struct {
	MemberID string       `json:"memberId"`
	Stage    FailureStage `json:"stage"`
	Code     string       `json:"code"`
	Reason   string       `json:"reason"`
}
