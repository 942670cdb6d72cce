// internal/engine/pipeline/insights.go
package pipeline

import (
	"math"
	"sort"

	"volunteer-engine/internal/models"
)

type CandidateSummary struct {
	MemberID            string                     `json:"memberId"`
	MemberName          string                     `json:"memberName"`
	RecruitmentScore    int                        `json:"recruitmentScore"`
	Readiness           models.Readiness           `json:"readiness"`
	LeadershipPotential models.LeadershipPotential `json:"leadershipPotential"`
	TopMinistry         string                     `json:"topMinistry,omitempty"`
}

type MinistryDemand struct {
	MinistryID     string `json:"ministryId"`
	MinistryName   string `json:"ministryName"`
	CandidateCount int    `json:"candidateCount"`
}

type BarrierCount struct {
	Barrier     string `json:"barrier"`
	MemberCount int    `json:"memberCount"`
}

type RecruitmentInsights struct {
	TopCandidates          []CandidateSummary `json:"topCandidates"`
	MostInDemandMinistries []MinistryDemand   `json:"mostInDemandMinistries"`
	CommonBarriers         []BarrierCount     `json:"commonBarriers"`
}

func summarizeRecruitment(analyzed int, profiles []models.RecruitmentProfile, failures []models.MemberFailure) RecruitmentSummary {
	s := RecruitmentSummary{
		TotalMembersAnalyzed: analyzed,
		QualifiedCandidates:  len(profiles),
		ByReadiness:          map[models.Readiness]int{},
		ByLeadership:         map[models.LeadershipPotential]int{},
		FailureCount:         len(failures),
	}
	total := 0
	for _, p := range profiles {
		total += p.RecruitmentScore
		s.ByReadiness[p.Readiness]++
		s.ByLeadership[p.LeadershipPotential]++
	}
	s.ReadyForRecruitment = s.ByReadiness[models.ReadinessReady]
	s.DevelopingCandidates = s.ByReadiness[models.ReadinessDeveloping]
	s.HighLeadershipPotential = s.ByLeadership[models.LeadershipHigh]
	if len(profiles) > 0 {
		s.AverageRecruitmentScore = int(math.Round(float64(total) / float64(len(profiles))))
	}
	return s
}

// recruitmentInsights expects profiles already sorted by score.
func (e *Engine) recruitmentInsights(profiles []models.RecruitmentProfile) RecruitmentInsights {
	size := e.policy.Pipeline.InsightSize

	top := make([]CandidateSummary, 0, min(size, len(profiles)))
	for _, p := range profiles[:min(size, len(profiles))] {
		c := CandidateSummary{
			MemberID:            p.MemberID,
			MemberName:          p.MemberName,
			RecruitmentScore:    p.RecruitmentScore,
			Readiness:           p.Readiness,
			LeadershipPotential: p.LeadershipPotential,
		}
		if len(p.RecommendedMinistries) > 0 {
			c.TopMinistry = p.RecommendedMinistries[0].MinistryName
		}
		top = append(top, c)
	}

	demand := map[string]*MinistryDemand{}
	barriers := map[string]int{}
	for _, p := range profiles {
		for _, m := range p.RecommendedMinistries {
			d, ok := demand[m.MinistryID]
			if !ok {
				d = &MinistryDemand{MinistryID: m.MinistryID, MinistryName: m.MinistryName}
				demand[m.MinistryID] = d
			}
			d.CandidateCount++
		}
		for _, b := range p.Barriers {
			barriers[b]++
		}
	}

	ministries := make([]MinistryDemand, 0, len(demand))
	for _, d := range demand {
		ministries = append(ministries, *d)
	}
	sort.Slice(ministries, func(i, j int) bool {
		if ministries[i].CandidateCount != ministries[j].CandidateCount {
			return ministries[i].CandidateCount > ministries[j].CandidateCount
		}
		return ministries[i].MinistryID < ministries[j].MinistryID
	})

	common := make([]BarrierCount, 0, len(barriers))
	for b, n := range barriers {
		common = append(common, BarrierCount{Barrier: b, MemberCount: n})
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].MemberCount != common[j].MemberCount {
			return common[i].MemberCount > common[j].MemberCount
		}
		return common[i].Barrier < common[j].Barrier
	})

	return RecruitmentInsights{
		TopCandidates:          top,
		MostInDemandMinistries: ministries[:min(size, len(ministries))],
		CommonBarriers:         common[:min(size, len(common))],
	}
}
