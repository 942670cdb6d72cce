// internal/engine/matching/matcher.go
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"volunteer-engine/internal/engine/policy"
	"volunteer-engine/internal/models"
)

// Matcher ranks ministries against a member profile.
type Matcher struct {
	weights policy.MatchingWeights
}

func NewMatcher(p policy.Policy) *Matcher {
	return &Matcher{weights: p.Matching}
}

// Match returns at most MaxResults matches scoring above MinScore, best first.
// Equal scores are ordered by ministry ID so output is stable across runs.
func (m *Matcher) Match(member models.MemberProfile, ministries []models.Ministry) []models.MinistryMatch {
	matches := make([]models.MinistryMatch, 0, len(ministries))
	for _, ministry := range ministries {
		match, ok := m.score(member, ministry)
		if ok {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].MinistryID < matches[j].MinistryID
	})

	if len(matches) > m.weights.MaxResults {
		matches = matches[:m.weights.MaxResults]
	}
	return matches
}

func (m *Matcher) score(member models.MemberProfile, ministry models.Ministry) (models.MinistryMatch, bool) {
	w := m.weights
	var (
		score     float64
		reasoning []string
	)

	if member.MinistryPassions.Contains(ministry.ID) {
		score += float64(w.PassionBonus)
		reasoning = append(reasoning, fmt.Sprintf("Expressed passion for %s", ministry.Name))
	}

	if shared := member.SpiritualGifts.Intersect(ministry.RequiredGifts); !shared.IsEmpty() {
		score += float64(shared.Len() * w.GiftWeight)
		reasoning = append(reasoning, fmt.Sprintf("Aligned spiritual gifts: %s", strings.Join(shared, ", ")))
	}

	current, optimal := ministry.CurrentVolunteerCount, ministry.OptimalStaffing
	if optimal > 0 && current < optimal {
		bonus := float64(optimal-current) / float64(optimal) * float64(w.UrgencyCap)
		score += math.Min(float64(w.UrgencyCap), bonus)
		reasoning = append(reasoning, fmt.Sprintf("Ministry needs %d more volunteers", optimal-current))
	}

	score = math.Round(score*100) / 100
	if score <= w.MinScore {
		return models.MinistryMatch{}, false
	}

	prep := make([]string, len(ministry.RequiredPreparation))
	copy(prep, ministry.RequiredPreparation)

	return models.MinistryMatch{
		MinistryID:              ministry.ID,
		MinistryName:            ministry.Name,
		MatchScore:              score,
		Reasoning:               reasoning,
		Urgency:                 m.urgency(current),
		EstimatedTimeCommitment: ministry.TimeCommitment,
		RequiredPreparation:     prep,
		RequiresBackgroundCheck: ministry.RequiresBackgroundCheck,
	}, true
}

func (m *Matcher) urgency(current int) models.Priority {
	switch {
	case current <= 0:
		return models.PriorityHigh
	case current < m.weights.MediumUrgencyBelow:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
