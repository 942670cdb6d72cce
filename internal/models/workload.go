// internal/models/workload.go
package models

import "time"

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

// Assignment is one scheduled service slot for a volunteer.
type Assignment struct {
	ID         string           `json:"id"`
	MemberID   string           `json:"memberId"`
	MinistryID string           `json:"ministryId"`
	Date       time.Time        `json:"date"`
	Status     AssignmentStatus `json:"status"`
}

type BurnoutRisk string

const (
	BurnoutLow      BurnoutRisk = "LOW"
	BurnoutMedium   BurnoutRisk = "MEDIUM"
	BurnoutHigh     BurnoutRisk = "HIGH"
	BurnoutCritical BurnoutRisk = "CRITICAL"
)

func (r BurnoutRisk) Overloaded() bool {
	return r == BurnoutHigh || r == BurnoutCritical
}

type WorkloadSnapshot struct {
	MemberID           string      `json:"memberId"`
	MemberName         string      `json:"memberName"`
	CurrentAssignments int         `json:"currentAssignments"`
	WeeklyAssignments  int         `json:"weeklyAssignments"`
	MonthlyAssignments int         `json:"monthlyAssignments"`
	WorkloadScore      int         `json:"workloadScore"`
	BurnoutRisk        BurnoutRisk `json:"burnoutRisk"`
	Skills             IDSet       `json:"skills"`
	MinistryIDs        IDSet       `json:"ministryIds"`
	LastServedAt       *time.Time  `json:"lastServedAt,omitempty"`
}

type RecommendationType string

const (
	RecommendRedistribute     RecommendationType = "REDISTRIBUTE"
	RecommendRestPeriod       RecommendationType = "REST_PERIOD"
	RecommendNewRecruitment   RecommendationType = "NEW_RECRUITMENT"
	RecommendSkillDevelopment RecommendationType = "SKILL_DEVELOPMENT"
)

type BalancingRecommendation struct {
	Type            RecommendationType `json:"type"`
	Priority        Priority           `json:"priority"`
	Description     string             `json:"description"`
	AffectedMembers []string           `json:"affectedMembers"`
	MinistryID      string             `json:"ministryId,omitempty"`
	ExpectedImpact  string             `json:"expectedImpact"`
	ActionItems     []string           `json:"actionItems"`
}
