// internal/engine/workload/recommendations.go
package workload

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"volunteer-engine/internal/models"
)

// Recommend derives balancing recommendations from snapshots sorted by sortByLoad.
// The result is ordered HIGH to LOW priority and is otherwise stable.
func (b *Balancer) Recommend(snapshots []models.WorkloadSnapshot, ministries []models.Ministry, now time.Time) []models.BalancingRecommendation {
	var (
		overloaded    []models.WorkloadSnapshot
		underutilized []models.WorkloadSnapshot
	)
	for _, s := range snapshots {
		switch {
		case s.BurnoutRisk.Overloaded():
			overloaded = append(overloaded, s)
		case b.underutilized(s):
			underutilized = append(underutilized, s)
		}
	}

	var recs []models.BalancingRecommendation
	recs = append(recs, b.redistribute(overloaded, underutilized)...)
	recs = append(recs, b.restPeriod(snapshots, now)...)
	recs = append(recs, b.newRecruitment(snapshots, ministries)...)
	recs = append(recs, b.skillDevelopment(snapshots, ministries)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})
	return recs
}

func (b *Balancer) underutilized(s models.WorkloadSnapshot) bool {
	return s.BurnoutRisk == models.BurnoutLow &&
		(s.CurrentAssignments == 0 || s.MonthlyAssignments < b.policy.UnderutilizedMonthlyBelow)
}

func (b *Balancer) redistribute(overloaded, underutilized []models.WorkloadSnapshot) []models.BalancingRecommendation {
	if len(overloaded) == 0 {
		return nil
	}

	recs := []models.BalancingRecommendation{{
		Type:            models.RecommendRedistribute,
		Priority:        priorityFor(overloaded, models.PriorityMedium),
		Description:     fmt.Sprintf("%d volunteers are overloaded and need relief", len(overloaded)),
		AffectedMembers: memberIDs(overloaded),
		ExpectedImpact:  "Reduces burnout and improves volunteer retention",
		ActionItems: []string{
			"Reassign some responsibilities to less busy volunteers",
			"Rotate roles to spread the load",
			"Split large assignments into smaller tasks",
			"Schedule rest periods for high performers",
		},
	}}

	limit := min(len(overloaded), b.policy.MaxRedistributeMembers)
	for _, member := range overloaded[:limit] {
		peers := b.peersFor(member, underutilized)
		if len(peers) == 0 {
			continue
		}
		names := make([]string, len(peers))
		for i, p := range peers {
			names[i] = displayName(p)
		}
		recs = append(recs, models.BalancingRecommendation{
			Type:            models.RecommendRedistribute,
			Priority:        priorityFor([]models.WorkloadSnapshot{member}, models.PriorityMedium),
			Description:     fmt.Sprintf("Move part of %s's load to available volunteers", displayName(member)),
			AffectedMembers: append([]string{member.MemberID}, memberIDs(peers)...),
			ExpectedImpact:  fmt.Sprintf("Cuts %s's load by 30-40%%", displayName(member)),
			ActionItems: []string{
				fmt.Sprintf("Contact %s about new assignments", strings.Join(names, " and ")),
				fmt.Sprintf("Transfer 2-3 responsibilities from %s", displayName(member)),
				"Provide orientation and training where needed",
			},
		})
	}
	return recs
}

// peersFor picks underutilized volunteers sharing a skill with member. Volunteers with
// no recorded skills are treated as willing to learn.
func (b *Balancer) peersFor(member models.WorkloadSnapshot, underutilized []models.WorkloadSnapshot) []models.WorkloadSnapshot {
	var peers []models.WorkloadSnapshot
	for _, u := range underutilized {
		if len(peers) == b.policy.MaxPeersPerMember {
			break
		}
		if u.Skills.IsEmpty() || u.Skills.Overlaps(member.Skills) {
			peers = append(peers, u)
		}
	}
	return peers
}

func (b *Balancer) restPeriod(snapshots []models.WorkloadSnapshot, now time.Time) []models.BalancingRecommendation {
	var needRest []models.WorkloadSnapshot
	for _, s := range snapshots {
		if s.MonthlyAssignments <= b.policy.RestMonthlyAbove || s.LastServedAt == nil {
			continue
		}
		if now.Sub(*s.LastServedAt) < b.policy.RestRecentWithin {
			needRest = append(needRest, s)
		}
	}
	if len(needRest) == 0 {
		return nil
	}
	return []models.BalancingRecommendation{{
		Type:            models.RecommendRestPeriod,
		Priority:        priorityFor(needRest, models.PriorityMedium),
		Description:     fmt.Sprintf("%d volunteers need a scheduled rest period", len(needRest)),
		AffectedMembers: memberIDs(needRest),
		ExpectedImpact:  "Prevents burnout and keeps morale high",
		ActionItems: []string{
			"Schedule rotating breaks for active volunteers",
			"Find temporary replacements",
			"Recognize and thank exceptional service",
		},
	}}
}

// newRecruitment flags ministries whose overloaded members have no underutilized
// peer inside the same ministry to hand work to.
func (b *Balancer) newRecruitment(snapshots []models.WorkloadSnapshot, ministries []models.Ministry) []models.BalancingRecommendation {
	refs := ministryRefs(ministries)
	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	for _, s := range snapshots {
		for _, id := range s.MinistryIDs {
			if _, ok := refs[id]; !ok {
				refs[id] = ministryRef{id: id, name: id}
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)

	var recs []models.BalancingRecommendation
	for _, id := range ids {
		var serving, overloaded []models.WorkloadSnapshot
		spare := false
		for _, s := range snapshots {
			if !s.MinistryIDs.Contains(id) {
				continue
			}
			serving = append(serving, s)
			if s.BurnoutRisk.Overloaded() {
				overloaded = append(overloaded, s)
			} else if b.underutilized(s) {
				spare = true
			}
		}
		if len(overloaded) == 0 || spare {
			continue
		}

		desc := fmt.Sprintf("%s has %d overloaded volunteers and no spare capacity", refs[id].name, len(overloaded))
		if len(overloaded) == len(serving) {
			desc = fmt.Sprintf("Every volunteer serving in %s is overloaded", refs[id].name)
		}
		recs = append(recs, models.BalancingRecommendation{
			Type:            models.RecommendNewRecruitment,
			Priority:        priorityFor(overloaded, models.PriorityMedium),
			Description:     desc,
			AffectedMembers: memberIDs(overloaded),
			MinistryID:      refs[id].id,
			ExpectedImpact:  "Adds capacity the ministry cannot find internally",
			ActionItems: []string{
				fmt.Sprintf("Run a recruitment analysis targeting %s", refs[id].name),
				"Invite ready candidates to observe a service",
				"Pair new recruits with the current team for handover",
			},
		})
	}
	return recs
}

func (b *Balancer) skillDevelopment(snapshots []models.WorkloadSnapshot, ministries []models.Ministry) []models.BalancingRecommendation {
	var idle []models.WorkloadSnapshot
	for _, s := range snapshots {
		if s.BurnoutRisk == models.BurnoutLow && s.CurrentAssignments == 0 {
			idle = append(idle, s)
		}
	}
	var understaffed []models.Ministry
	for _, m := range ministries {
		if m.CurrentVolunteerCount < b.staffing.Floor {
			understaffed = append(understaffed, m)
		}
	}
	if len(idle) == 0 || len(understaffed) == 0 {
		return nil
	}
	sort.Slice(understaffed, func(i, j int) bool { return understaffed[i].ID < understaffed[j].ID })

	names := make([]string, len(understaffed))
	for i, m := range understaffed {
		names[i] = m.Name
	}
	rec := models.BalancingRecommendation{
		Type:            models.RecommendSkillDevelopment,
		Priority:        priorityFor(idle, models.PriorityLow),
		Description:     fmt.Sprintf("Train %d available volunteers for understaffed ministries: %s", len(idle), strings.Join(names, ", ")),
		AffectedMembers: memberIDs(idle),
		ExpectedImpact:  "Builds redundancy and reduces dependence on a few volunteers",
		ActionItems: []string{
			"Hold training workshops for the understaffed ministries",
			"Pair available volunteers with experienced mentors",
			"Offer trial assignments with supervision",
		},
	}
	if len(understaffed) == 1 {
		rec.MinistryID = understaffed[0].ID
	}
	return []models.BalancingRecommendation{rec}
}

// priorityFor is HIGH whenever a CRITICAL member is affected.
func priorityFor(affected []models.WorkloadSnapshot, otherwise models.Priority) models.Priority {
	for _, s := range affected {
		if s.BurnoutRisk == models.BurnoutCritical {
			return models.PriorityHigh
		}
	}
	return otherwise
}

func memberIDs(s []models.WorkloadSnapshot) []string {
	ids := make([]string, len(s))
	for i, w := range s {
		ids[i] = w.MemberID
	}
	return ids
}

// ministryRef keeps the stored ID of a ministry next to its display name.
type ministryRef struct {
	id   string
	name string
}

// ministryRefs keys ministries by normalized ID, matching IDSet membership.
func ministryRefs(ministries []models.Ministry) map[string]ministryRef {
	refs := make(map[string]ministryRef, len(ministries))
	for _, m := range ministries {
		refs[models.NormalizeID(m.ID)] = ministryRef{id: m.ID, name: m.Name}
	}
	return refs
}

func displayName(s models.WorkloadSnapshot) string {
	if s.MemberName != "" {
		return s.MemberName
	}
	return s.MemberID
}
