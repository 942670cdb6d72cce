// internal/models/member.go
package models

import (
	"strings"
	"time"
)

// MemberProfile is a read-only snapshot of a congregant for one scoring run.
// Pointer fields map nullable upstream columns; nil means the value was never recorded.
type MemberProfile struct {
	ID                     string     `json:"id"`
	TenantID               string     `json:"tenantId"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	Email                  string     `json:"email,omitempty"`
	SpiritualGifts         IDSet      `json:"spiritualGifts"`
	MinistryPassions       IDSet      `json:"ministryPassions"`
	Skills                 IDSet      `json:"skills"`
	SpiritualCalling       string     `json:"spiritualCalling,omitempty"`
	PersonalityType        string     `json:"personalityType,omitempty"`
	ExperienceLevel        *int       `json:"experienceLevel,omitempty"`
	LeadershipReadiness    *int       `json:"leadershipReadiness,omitempty"`
	AvailabilityScore      *float64   `json:"availabilityScore,omitempty"`
	HasAvailabilityMatrix  bool       `json:"hasAvailabilityMatrix"`
	HasSpiritualAssessment bool       `json:"hasSpiritualAssessment"`
	BackgroundCheckDate    *time.Time `json:"backgroundCheckDate,omitempty"`
	IsActiveVolunteer      bool       `json:"isActiveVolunteer"`
	VolunteerMinistryIDs   IDSet      `json:"volunteerMinistryIds,omitempty"`
}

func (m MemberProfile) DisplayName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (m MemberProfile) HasCalling() bool {
	return strings.TrimSpace(m.SpiritualCalling) != ""
}

func (m MemberProfile) HasBackgroundCheck() bool {
	return m.BackgroundCheckDate != nil && !m.BackgroundCheckDate.IsZero()
}

// ActivityCounts are the per-member engagement counts fetched for a scoring run.
type ActivityCounts struct {
	RecentCheckIns  int `json:"recentCheckIns"`
	RecentDonations int `json:"recentDonations"`
}

// PipelineCounts backs the pipeline metrics view.
type PipelineCounts struct {
	TotalMembers              int `json:"totalMembers"`
	CurrentVolunteers         int `json:"currentVolunteers"`
	MembersWithSpiritualGifts int `json:"membersWithSpiritualGifts"`
	MembersWithAvailability   int `json:"membersWithAvailability"`
}

// IntPtr and FloatPtr are small helpers for building profiles with recorded values.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
