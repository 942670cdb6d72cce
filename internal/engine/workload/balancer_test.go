package workload

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-engine/internal/engine/policy"
	"volunteer-engine/internal/models"
)

var now = time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func assignment(id, ministryID string, offset time.Duration, status models.AssignmentStatus) models.Assignment {
	return models.Assignment{ID: id, MinistryID: ministryID, Date: now.Add(offset), Status: status}
}

func volunteer(id string, gifts models.IDSet, ministries models.IDSet, assignments ...models.Assignment) Volunteer {
	return Volunteer{
		Member: models.MemberProfile{
			ID:                   id,
			FirstName:            id,
			SpiritualGifts:       gifts,
			VolunteerMinistryIDs: ministries,
			IsActiveVolunteer:    true,
		},
		Assignments: assignments,
	}
}

func recsOfType(recs []models.BalancingRecommendation, typ models.RecommendationType) []models.BalancingRecommendation {
	var out []models.BalancingRecommendation
	for _, r := range recs {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func TestSnapshot_RollingWindows(t *testing.T) {
	b := NewBalancer(policy.Default())
	v := volunteer("w", nil, nil,
		assignment("a1", "m", 0, models.AssignmentAssigned),
		assignment("a2", "m", -7*day, models.AssignmentCompleted),
		assignment("a3", "m", 7*day, models.AssignmentConfirmed),
		assignment("a4", "m", -time.Hour, models.AssignmentAssigned),
		assignment("a5", "m", 30*day, models.AssignmentAssigned),
		assignment("a6", "other", day, models.AssignmentCancelled),
	)

	s := b.Snapshot(v, now)

	assert.Equal(t, 3, s.CurrentAssignments)
	// a1 and a4 fall inside now +/- 3.5 days; a2 and a3 are a week away
	assert.Equal(t, 2, s.WeeklyAssignments)
	// a5 is 30 days out, beyond now + 15 days
	assert.Equal(t, 4, s.MonthlyAssignments)
	// 3*12 + 2*8 + 4*2
	assert.Equal(t, 60, s.WorkloadScore)
	assert.Equal(t, models.BurnoutMedium, s.BurnoutRisk)
	require.NotNil(t, s.LastServedAt)
	assert.Equal(t, now.Add(-7*day), *s.LastServedAt)
	// cancelled assignments do not add ministries
	assert.Equal(t, models.IDSet{"m"}, s.MinistryIDs)
}

func TestSnapshot_WindowWidth(t *testing.T) {
	b := NewBalancer(policy.Default())

	tests := []struct {
		name        string
		offsets     []time.Duration
		wantWeekly  int
		wantMonthly int
	}{
		{"twelve days apart", []time.Duration{-6 * day, 6 * day}, 0, 2},
		{"eight days apart", []time.Duration{-4 * day, 4 * day}, 0, 2},
		{"six days apart", []time.Duration{-3 * day, 3 * day}, 2, 2},
		{"fifty eight days apart", []time.Duration{-29 * day, 29 * day}, 0, 0},
		{"twenty days apart", []time.Duration{-10 * day, 10 * day}, 0, 2},
		{"window edges", []time.Duration{-84 * time.Hour, 84 * time.Hour}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var as []models.Assignment
			for i, off := range tt.offsets {
				as = append(as, assignment(fmt.Sprintf("a%d", i), "m", off, models.AssignmentAssigned))
			}
			s := b.Snapshot(volunteer("w", nil, nil, as...), now)
			assert.Equal(t, tt.wantWeekly, s.WeeklyAssignments)
			assert.Equal(t, tt.wantMonthly, s.MonthlyAssignments)
		})
	}
}

func TestSnapshot_WeeklyNeverSpansMoreThanAWeek(t *testing.T) {
	b := NewBalancer(policy.Default())
	for hours := 0; hours <= 14*24; hours += 6 {
		gap := time.Duration(hours) * time.Hour
		for shift := -gap; shift <= 0; shift += 6 * time.Hour {
			v := volunteer("w", nil, nil,
				assignment("a", "m", shift, models.AssignmentAssigned),
				assignment("b", "m", shift+gap, models.AssignmentAssigned),
			)
			s := b.Snapshot(v, now)
			if gap > 7*day {
				require.LessOrEqual(t, s.WeeklyAssignments, 1, "gap %s shift %s", gap, shift)
			}
		}
	}
}

func TestScore_Caps(t *testing.T) {
	b := NewBalancer(policy.Default())
	assert.Equal(t, 0, b.Score(0, 0, 0))
	assert.Equal(t, 100, b.Score(100, 100, 100))
	assert.Equal(t, 60, b.Score(5, 0, 0))
	assert.Equal(t, 12+8+2, b.Score(1, 1, 1))
	assert.Equal(t, 0, b.Score(-3, -1, -2))
}

func TestClassifyRisk_Partition(t *testing.T) {
	b := NewBalancer(policy.Default())

	tests := []struct {
		score int
		want  models.BurnoutRisk
	}{
		{0, models.BurnoutLow},
		{49, models.BurnoutLow},
		{50, models.BurnoutMedium},
		{69, models.BurnoutMedium},
		{70, models.BurnoutHigh},
		{84, models.BurnoutHigh},
		{85, models.BurnoutCritical},
		{100, models.BurnoutCritical},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, b.ClassifyRisk(tt.score))
		})
	}

	rank := map[models.BurnoutRisk]int{
		models.BurnoutLow: 0, models.BurnoutMedium: 1, models.BurnoutHigh: 2, models.BurnoutCritical: 3,
	}
	prev := b.ClassifyRisk(0)
	for score := 1; score <= 100; score++ {
		got := b.ClassifyRisk(score)
		require.GreaterOrEqual(t, rank[got], rank[prev], "risk decreased at %d", score)
		prev = got
	}
}

func scenarioVolunteers() []Volunteer {
	var heavy []models.Assignment
	for i := 0; i < 6; i++ {
		heavy = append(heavy, assignment(fmt.Sprintf("h-next-%d", i), "worship", time.Duration(i+1)*day, models.AssignmentConfirmed))
	}
	for i := 0; i < 4; i++ {
		heavy = append(heavy, assignment(fmt.Sprintf("h-past-%d", i), "worship", -time.Duration(i+1)*day, models.AssignmentCompleted))
	}
	return []Volunteer{
		volunteer("idle", nil, nil),
		volunteer("light", models.NewIDSet("music"), nil, assignment("l-1", "worship", 10*day, models.AssignmentAssigned)),
		volunteer("heavy", models.NewIDSet("music"), models.NewIDSet("worship", "av"), heavy...),
	}
}

func scenarioMinistries() []models.Ministry {
	return []models.Ministry{
		models.NewMinistry("worship", "t1", "Worship", models.CategoryMusic, 5, models.DefaultStaffingRule),
		models.NewMinistry("av", "t1", "Audio Visual", models.CategoryTechnology, 1, models.DefaultStaffingRule),
	}
}

func TestAnalyze_OverloadedVolunteerIsFlagged(t *testing.T) {
	b := NewBalancer(policy.Default())
	result := b.Analyze(scenarioVolunteers(), scenarioMinistries(), now)

	require.Len(t, result.Workloads, 3)
	heavy := result.Workloads[0]
	assert.Equal(t, "heavy", heavy.MemberID)
	assert.Equal(t, 6, heavy.CurrentAssignments)
	assert.Equal(t, 10, heavy.MonthlyAssignments)
	assert.Equal(t, 100, heavy.WorkloadScore)
	assert.True(t, heavy.BurnoutRisk.Overloaded())
	assert.Equal(t, []string{"heavy", "light", "idle"}, []string{
		result.Workloads[0].MemberID, result.Workloads[1].MemberID, result.Workloads[2].MemberID,
	})

	named := false
	for _, r := range result.Recommendations {
		if r.Type == models.RecommendRedistribute || r.Type == models.RecommendRestPeriod {
			named = named || contains(r.AffectedMembers, "heavy")
		}
	}
	assert.True(t, named, "heavy must be named in a REDISTRIBUTE or REST_PERIOD recommendation")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestAnalyze_Recommendations(t *testing.T) {
	b := NewBalancer(policy.Default())
	result := b.Analyze(scenarioVolunteers(), scenarioMinistries(), now)
	recs := result.Recommendations

	redistribute := recsOfType(recs, models.RecommendRedistribute)
	require.Len(t, redistribute, 2)
	assert.Equal(t, []string{"heavy"}, redistribute[0].AffectedMembers)
	assert.Equal(t, models.PriorityHigh, redistribute[0].Priority)
	// light shares the music gift, idle has no recorded skills
	assert.Equal(t, []string{"heavy", "light", "idle"}, redistribute[1].AffectedMembers)
	assert.Contains(t, redistribute[1].ActionItems[0], "light and idle")

	rest := recsOfType(recs, models.RecommendRestPeriod)
	require.Len(t, rest, 1)
	assert.Equal(t, []string{"heavy"}, rest[0].AffectedMembers)

	// worship has spare capacity in light, av does not
	recruit := recsOfType(recs, models.RecommendNewRecruitment)
	require.Len(t, recruit, 1)
	assert.Equal(t, "av", recruit[0].MinistryID)
	assert.Contains(t, recruit[0].Description, "Every volunteer serving in Audio Visual")

	skills := recsOfType(recs, models.RecommendSkillDevelopment)
	require.Len(t, skills, 1)
	assert.Equal(t, models.PriorityLow, skills[0].Priority)
	assert.Equal(t, []string{"idle"}, skills[0].AffectedMembers)
	assert.Equal(t, "av", skills[0].MinistryID)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Priority.Rank(), recs[i].Priority.Rank())
	}
	assert.Equal(t, models.RecommendSkillDevelopment, recs[len(recs)-1].Type)
}

func TestAnalyze_NoSparePeers(t *testing.T) {
	b := NewBalancer(policy.Default())
	busy := func(id string) Volunteer {
		var as []models.Assignment
		for i := 0; i < 5; i++ {
			as = append(as, assignment(fmt.Sprintf("%s-%d", id, i), "kids", time.Duration(i)*day, models.AssignmentAssigned))
		}
		return volunteer(id, models.NewIDSet("teaching"), nil, as...)
	}

	result := b.Analyze([]Volunteer{busy("b1"), busy("b2")}, nil, now)

	for _, w := range result.Workloads {
		// 60 + 24 + 10
		assert.Equal(t, 94, w.WorkloadScore)
		assert.Equal(t, models.BurnoutCritical, w.BurnoutRisk)
	}
	redistribute := recsOfType(result.Recommendations, models.RecommendRedistribute)
	require.Len(t, redistribute, 1)
	assert.Equal(t, []string{"b1", "b2"}, redistribute[0].AffectedMembers)

	recruit := recsOfType(result.Recommendations, models.RecommendNewRecruitment)
	require.Len(t, recruit, 1)
	assert.Equal(t, "kids", recruit[0].MinistryID)
	assert.Equal(t, models.PriorityHigh, recruit[0].Priority)

	assert.Empty(t, recsOfType(result.Recommendations, models.RecommendRestPeriod))
	assert.Empty(t, recsOfType(result.Recommendations, models.RecommendSkillDevelopment))
}

func TestAnalyze_SummaryAndInsights(t *testing.T) {
	b := NewBalancer(policy.Default())
	result := b.Analyze(scenarioVolunteers(), scenarioMinistries(), now)
	s := result.Summary

	assert.Equal(t, 3, s.TotalVolunteers)
	// (100 + 14 + 0) / 3
	assert.Equal(t, 38.0, s.AverageWorkloadScore)
	assert.Equal(t, 1.0, s.MedianCurrentAssignments)
	assert.Equal(t, 1, s.HighBurnoutRisk)
	assert.Equal(t, 1, s.Underutilized)
	assert.Equal(t, 52.0, s.BalanceScore)
	assert.Equal(t, len(result.Recommendations), s.RecommendationsCount)
	assert.Equal(t, 4, s.HighPriorityActions)
	assert.Equal(t, RiskDistribution{Low: 2, Critical: 1}, s.Distribution)

	require.Len(t, result.Insights.MostOverloaded, 1)
	assert.Equal(t, "heavy", result.Insights.MostOverloaded[0].MemberID)
	require.Len(t, result.Insights.MostAvailable, 2)
	assert.Equal(t, "idle", result.Insights.MostAvailable[0].MemberID)
	assert.Equal(t, "light", result.Insights.MostAvailable[1].MemberID)
}

func busyVolunteer(id string, upcoming int) Volunteer {
	var as []models.Assignment
	for i := 0; i < upcoming; i++ {
		as = append(as, assignment(fmt.Sprintf("%s-%d", id, i), "kids", time.Duration(i+1)*day, models.AssignmentConfirmed))
	}
	return volunteer(id, nil, nil, as...)
}

func memberIDsOf(loads []MemberLoad) []string {
	ids := make([]string, 0, len(loads))
	for _, l := range loads {
		ids = append(ids, l.MemberID)
	}
	return ids
}

func TestInsights(t *testing.T) {
	b := NewBalancer(policy.Default())

	tests := []struct {
		name           string
		volunteers     []Volunteer
		wantOverloaded []string
		wantAvailable  []string
	}{
		{
			name:           "single busy volunteer",
			volunteers:     []Volunteer{busyVolunteer("busy", 6)},
			wantOverloaded: []string{"busy"},
			wantAvailable:  []string{},
		},
		{
			name:           "single idle volunteer",
			volunteers:     []Volunteer{volunteer("idle", nil, nil)},
			wantOverloaded: []string{},
			wantAvailable:  []string{"idle"},
		},
		{
			name: "everyone overloaded",
			volunteers: []Volunteer{
				busyVolunteer("b1", 6), busyVolunteer("b2", 6), busyVolunteer("b3", 6), busyVolunteer("b4", 6),
			},
			wantOverloaded: []string{"b1", "b2", "b3"},
			wantAvailable:  []string{},
		},
		{
			name: "medium load listed once",
			volunteers: []Volunteer{
				busyVolunteer("m1", 3), volunteer("i1", nil, nil), volunteer("i2", nil, nil),
			},
			wantOverloaded: []string{"m1"},
			wantAvailable:  []string{"i2", "i1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := b.Analyze(tt.volunteers, nil, now).Insights

			assert.Equal(t, tt.wantOverloaded, memberIDsOf(in.MostOverloaded))
			assert.Equal(t, tt.wantAvailable, memberIDsOf(in.MostAvailable))
			for _, a := range in.MostAvailable {
				assert.False(t, a.BurnoutRisk.Overloaded())
				assert.NotContains(t, memberIDsOf(in.MostOverloaded), a.MemberID)
			}
		})
	}
}

func TestAnalyze_Empty(t *testing.T) {
	b := NewBalancer(policy.Default())
	result := b.Analyze(nil, nil, now)

	assert.Empty(t, result.Workloads)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, 100.0, result.Summary.BalanceScore)
	assert.Equal(t, 0.0, result.Summary.MedianCurrentAssignments)
	assert.NotNil(t, result.Insights.MostOverloaded)
	assert.Empty(t, result.Insights.MostAvailable)
}

func TestCompare(t *testing.T) {
	b := NewBalancer(policy.Default())
	result := b.Analyze(scenarioVolunteers(), scenarioMinistries(), now)

	c, ok := Compare(result, "heavy")
	require.True(t, ok)
	assert.Equal(t, 1, c.Rank)
	assert.Equal(t, 62.0, c.WorkloadVsAverage)
	assert.Equal(t, 3, c.TotalVolunteers)

	c, ok = Compare(result, "idle")
	require.True(t, ok)
	assert.Equal(t, 3, c.Rank)
	assert.Equal(t, -38.0, c.WorkloadVsAverage)

	_, ok = Compare(result, "nobody")
	assert.False(t, ok)
}

func TestAnalyze_RecruitmentKeepsStoredMinistryID(t *testing.T) {
	b := NewBalancer(policy.Default())
	var as []models.Assignment
	for i := 0; i < 6; i++ {
		as = append(as, assignment(fmt.Sprintf("y-%d", i), "Youth-01", time.Duration(i+1)*day, models.AssignmentConfirmed))
	}
	v := volunteer("leader", nil, models.NewIDSet("Youth-01"), as...)
	ministries := []models.Ministry{
		models.NewMinistry("Youth-01", "t1", "Youth", models.CategoryYouth, 4, models.DefaultStaffingRule),
	}

	recruit := recsOfType(b.Analyze([]Volunteer{v}, ministries, now).Recommendations, models.RecommendNewRecruitment)
	require.Len(t, recruit, 1)
	assert.Equal(t, "Youth-01", recruit[0].MinistryID)
	assert.Contains(t, recruit[0].Description, "Youth")
}
