// internal/engine/workload/summary.go
package workload

import (
	"math"
	"sort"

	"volunteer-engine/internal/models"
)

type RiskDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

type Summary struct {
	TotalVolunteers          int              `json:"totalVolunteers"`
	AverageWorkloadScore     float64          `json:"averageWorkloadScore"`
	MedianCurrentAssignments float64          `json:"medianCurrentAssignments"`
	HighBurnoutRisk          int              `json:"highBurnoutRisk"`
	Underutilized            int              `json:"underutilized"`
	BalanceScore             float64          `json:"balanceScore"`
	RecommendationsCount     int              `json:"recommendationsCount"`
	HighPriorityActions      int              `json:"highPriorityActions"`
	Distribution             RiskDistribution `json:"distribution"`
}

type MemberLoad struct {
	MemberID           string             `json:"memberId"`
	MemberName         string             `json:"memberName"`
	WorkloadScore      int                `json:"workloadScore"`
	CurrentAssignments int                `json:"currentAssignments"`
	BurnoutRisk        models.BurnoutRisk `json:"burnoutRisk"`
}

type Insights struct {
	MostOverloaded []MemberLoad `json:"mostOverloaded"`
	MostAvailable  []MemberLoad `json:"mostAvailable"`
}

// Comparison places one member against the rest of the analyzed volunteers.
type Comparison struct {
	Workload          models.WorkloadSnapshot `json:"workload"`
	AverageScore      float64                 `json:"averageScore"`
	WorkloadVsAverage float64                 `json:"workloadVsAverage"`
	Rank              int                     `json:"rank"`
	TotalVolunteers   int                     `json:"totalVolunteers"`
}

// Compare looks up memberID in an analysis result. Rank 1 is the most loaded member.
func Compare(result Result, memberID string) (Comparison, bool) {
	for i, w := range result.Workloads {
		if w.MemberID != memberID {
			continue
		}
		avg := averageScore(result.Workloads)
		return Comparison{
			Workload:          w,
			AverageScore:      round1(avg),
			WorkloadVsAverage: round1(float64(w.WorkloadScore) - avg),
			Rank:              i + 1,
			TotalVolunteers:   len(result.Workloads),
		}, true
	}
	return Comparison{}, false
}

func (b *Balancer) summarize(snapshots []models.WorkloadSnapshot, recs []models.BalancingRecommendation) Summary {
	s := Summary{
		TotalVolunteers:      len(snapshots),
		RecommendationsCount: len(recs),
	}
	current := make([]int, 0, len(snapshots))
	for _, w := range snapshots {
		current = append(current, w.CurrentAssignments)
		switch w.BurnoutRisk {
		case models.BurnoutCritical:
			s.Distribution.Critical++
		case models.BurnoutHigh:
			s.Distribution.High++
		case models.BurnoutMedium:
			s.Distribution.Medium++
		default:
			s.Distribution.Low++
		}
		if w.CurrentAssignments == 0 {
			s.Underutilized++
		}
	}
	s.HighBurnoutRisk = s.Distribution.High + s.Distribution.Critical
	for _, r := range recs {
		if r.Priority == models.PriorityHigh {
			s.HighPriorityActions++
		}
	}

	avg := averageScore(snapshots)
	s.AverageWorkloadScore = round1(avg)
	s.MedianCurrentAssignments = median(current)
	s.BalanceScore = round1(math.Max(0, math.Min(100, 100-(avg+float64(s.HighBurnoutRisk)*10))))
	return s
}

// insights expects snapshots sorted most loaded first. MostOverloaded holds members
// above LOW risk; MostAvailable holds members below HIGH risk that are not already
// listed as overloaded. The two lists never share a member.
func (b *Balancer) insights(snapshots []models.WorkloadSnapshot) Insights {
	n := min(len(snapshots), b.policy.InsightSize)
	in := Insights{
		MostOverloaded: make([]MemberLoad, 0, n),
		MostAvailable:  make([]MemberLoad, 0, n),
	}
	listed := make(map[string]bool, n)
	for _, w := range snapshots {
		if len(in.MostOverloaded) == n || w.BurnoutRisk == models.BurnoutLow {
			break
		}
		in.MostOverloaded = append(in.MostOverloaded, loadOf(w))
		listed[w.MemberID] = true
	}
	for i := len(snapshots) - 1; i >= 0 && len(in.MostAvailable) < n; i-- {
		w := snapshots[i]
		if listed[w.MemberID] || w.BurnoutRisk.Overloaded() {
			continue
		}
		in.MostAvailable = append(in.MostAvailable, loadOf(w))
	}
	return in
}

func loadOf(w models.WorkloadSnapshot) MemberLoad {
	return MemberLoad{
		MemberID:           w.MemberID,
		MemberName:         w.MemberName,
		WorkloadScore:      w.WorkloadScore,
		CurrentAssignments: w.CurrentAssignments,
		BurnoutRisk:        w.BurnoutRisk,
	}
}

func averageScore(snapshots []models.WorkloadSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	total := 0
	for _, w := range snapshots {
		total += w.WorkloadScore
	}
	return float64(total) / float64(len(snapshots))
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
