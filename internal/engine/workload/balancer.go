// internal/engine/workload/balancer.go
package workload

import (
	"sort"
	"time"

	"volunteer-engine/internal/engine/policy"
	"volunteer-engine/internal/models"
)

// Volunteer is one active volunteer with the assignments fetched for a run.
type Volunteer struct {
	Member      models.MemberProfile `json:"member"`
	Assignments []models.Assignment  `json:"assignments"`
}

// Result is the full output of a workload analysis.
type Result struct {
	Workloads       []models.WorkloadSnapshot        `json:"workloads"`
	Recommendations []models.BalancingRecommendation `json:"recommendations"`
	Summary         Summary                          `json:"summary"`
	Insights        Insights                         `json:"insights"`
}

// Balancer computes workload snapshots and rebalancing recommendations. The clock is
// passed in on every call, so a Balancer is safe to share.
type Balancer struct {
	policy   policy.WorkloadPolicy
	staffing models.StaffingRule
}

func NewBalancer(p policy.Policy) *Balancer {
	return &Balancer{policy: p.Workload, staffing: p.Staffing}
}

// Analyze snapshots every volunteer, derives recommendations and the summary.
func (b *Balancer) Analyze(volunteers []Volunteer, ministries []models.Ministry, now time.Time) Result {
	snapshots := make([]models.WorkloadSnapshot, 0, len(volunteers))
	for _, v := range volunteers {
		snapshots = append(snapshots, b.Snapshot(v, now))
	}
	sortByLoad(snapshots)

	recs := b.Recommend(snapshots, ministries, now)
	return Result{
		Workloads:       snapshots,
		Recommendations: recs,
		Summary:         b.summarize(snapshots, recs),
		Insights:        b.insights(snapshots),
	}
}

// Snapshot counts assignments in the current, weekly and monthly windows. The weekly
// and monthly windows are centred on now and span exactly WeeklyWindow and
// MonthlyWindow, so two assignments further apart than a window never share it.
func (b *Balancer) Snapshot(v Volunteer, now time.Time) models.WorkloadSnapshot {
	var (
		current, weekly, monthly int
		lastServed               *time.Time
	)
	ministryIDs := append([]string{}, v.Member.VolunteerMinistryIDs...)

	weekFrom, weekTo := centredWindow(now, b.policy.WeeklyWindow)
	monthFrom, monthTo := centredWindow(now, b.policy.MonthlyWindow)

	for _, a := range v.Assignments {
		if a.Status == models.AssignmentCancelled {
			continue
		}
		if a.MinistryID != "" {
			ministryIDs = append(ministryIDs, a.MinistryID)
		}
		if !a.Date.Before(now) && (a.Status == models.AssignmentAssigned || a.Status == models.AssignmentConfirmed) {
			current++
		}
		if inWindow(a.Date, weekFrom, weekTo) {
			weekly++
		}
		if inWindow(a.Date, monthFrom, monthTo) {
			monthly++
		}
		if a.Status == models.AssignmentCompleted && !a.Date.After(now) {
			if lastServed == nil || a.Date.After(*lastServed) {
				d := a.Date
				lastServed = &d
			}
		}
	}

	score := b.Score(current, weekly, monthly)
	skills := make([]string, 0, v.Member.SpiritualGifts.Len()+v.Member.Skills.Len())
	skills = append(skills, v.Member.SpiritualGifts...)
	skills = append(skills, v.Member.Skills...)

	return models.WorkloadSnapshot{
		MemberID:           v.Member.ID,
		MemberName:         v.Member.DisplayName(),
		CurrentAssignments: current,
		WeeklyAssignments:  weekly,
		MonthlyAssignments: monthly,
		WorkloadScore:      score,
		BurnoutRisk:        b.ClassifyRisk(score),
		Skills:             models.NewIDSet(skills...),
		MinistryIDs:        models.NewIDSet(ministryIDs...),
		LastServedAt:       lastServed,
	}
}

// Score combines the three window counts into a 0..100 workload score.
func (b *Balancer) Score(current, weekly, monthly int) int {
	p := b.policy
	score := min(max(0, current)*p.CurrentWeight, p.CurrentCap) +
		min(max(0, weekly)*p.WeeklyWeight, p.WeeklyCap) +
		min(max(0, monthly)*p.MonthlyWeight, p.MonthlyCap)
	return min(score, 100)
}

// ClassifyRisk partitions the score range using inclusive lower bounds.
func (b *Balancer) ClassifyRisk(score int) models.BurnoutRisk {
	switch {
	case score >= b.policy.Critical:
		return models.BurnoutCritical
	case score >= b.policy.High:
		return models.BurnoutHigh
	case score >= b.policy.Medium:
		return models.BurnoutMedium
	default:
		return models.BurnoutLow
	}
}

// centredWindow returns [now-width/2, now-width/2+width).
func centredWindow(now time.Time, width time.Duration) (time.Time, time.Time) {
	from := now.Add(-width / 2)
	return from, from.Add(width)
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// sortByLoad orders snapshots most loaded first, ties by member ID.
func sortByLoad(s []models.WorkloadSnapshot) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].WorkloadScore != s[j].WorkloadScore {
			return s[i].WorkloadScore > s[j].WorkloadScore
		}
		if s[i].CurrentAssignments != s[j].CurrentAssignments {
			return s[i].CurrentAssignments > s[j].CurrentAssignments
		}
		return s[i].MemberID < s[j].MemberID
	})
}
