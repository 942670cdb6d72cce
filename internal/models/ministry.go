// internal/models/ministry.go
package models

import (
	"fmt"
	"math"
	"strings"
)

type MinistryCategory string

const (
	CategoryMusic          MinistryCategory = "MUSIC"
	CategoryTeaching       MinistryCategory = "TEACHING"
	CategoryChildren       MinistryCategory = "CHILDREN"
	CategoryYouth          MinistryCategory = "YOUTH"
	CategoryEvangelism     MinistryCategory = "EVANGELISM"
	CategoryService        MinistryCategory = "SERVICE"
	CategoryAdministration MinistryCategory = "ADMINISTRATION"
	CategoryTechnology     MinistryCategory = "TECHNOLOGY"
	CategorySecurity       MinistryCategory = "SECURITY"
	CategoryGeneral        MinistryCategory = "GENERAL"
)

// CategoryProfile is what a ministry category needs from its volunteers.
type CategoryProfile struct {
	RequiredGifts           IDSet    `json:"requiredGifts"`
	TimeCommitment          string   `json:"timeCommitment"`
	RequiredPreparation     []string `json:"requiredPreparation"`
	RequiresBackgroundCheck bool     `json:"requiresBackgroundCheck"`
}

// Catalog maps every category to its profile. ValidateCatalog is run from tests and
// at startup so a missing entry is caught before any ministry is built.
var Catalog = map[MinistryCategory]CategoryProfile{
	CategoryMusic: {
		RequiredGifts:       NewIDSet("music", "worship", "creativity", "art"),
		TimeCommitment:      "4-6 hours/week",
		RequiredPreparation: []string{"Music audition", "Sound equipment training"},
	},
	CategoryTeaching: {
		RequiredGifts:       NewIDSet("teaching", "shepherding", "knowledge", "wisdom"),
		TimeCommitment:      "3-5 hours/week",
		RequiredPreparation: []string{"Hermeneutics course", "Effective communication workshop"},
	},
	CategoryChildren: {
		RequiredGifts:           NewIDSet("teaching", "shepherding", "service", "patience"),
		TimeCommitment:          "2-4 hours/week",
		RequiredPreparation:     []string{"First aid certification", "Child development course"},
		RequiresBackgroundCheck: true,
	},
	CategoryYouth: {
		RequiredGifts:           NewIDSet("leadership", "discernment", "evangelism", "teaching"),
		TimeCommitment:          "3-6 hours/week",
		RequiredPreparation:     []string{"Youth mentoring seminar", "Leadership workshop"},
		RequiresBackgroundCheck: true,
	},
	CategoryEvangelism: {
		RequiredGifts:       NewIDSet("evangelism", "faith", "discernment"),
		TimeCommitment:      "2-3 hours/week",
		RequiredPreparation: []string{"General orientation"},
	},
	CategoryService: {
		RequiredGifts:       NewIDSet("service", "helps", "hospitality"),
		TimeCommitment:      "2-3 hours/week",
		RequiredPreparation: []string{"General orientation"},
	},
	CategoryAdministration: {
		RequiredGifts:       NewIDSet("administration", "leadership", "knowledge"),
		TimeCommitment:      "2-8 hours/week",
		RequiredPreparation: []string{"General orientation"},
	},
	CategoryTechnology: {
		RequiredGifts:       NewIDSet("service", "knowledge", "helps"),
		TimeCommitment:      "2-4 hours/week",
		RequiredPreparation: []string{"Basic technical training", "Equipment handling"},
	},
	CategorySecurity: {
		RequiredGifts:           NewIDSet("service", "discernment", "helps"),
		TimeCommitment:          "2-4 hours/week",
		RequiredPreparation:     []string{"Safety and emergency procedures"},
		RequiresBackgroundCheck: true,
	},
	CategoryGeneral: {
		RequiredGifts:       NewIDSet("service", "faith", "love"),
		TimeCommitment:      "2-3 hours/week",
		RequiredPreparation: []string{"General orientation"},
	},
}

// AllCategories lists categories in a stable order.
var AllCategories = []MinistryCategory{
	CategoryMusic, CategoryTeaching, CategoryChildren, CategoryYouth, CategoryEvangelism,
	CategoryService, CategoryAdministration, CategoryTechnology, CategorySecurity, CategoryGeneral,
}

// ParseCategory accepts the enum names case-insensitively.
func ParseCategory(raw string) (MinistryCategory, error) {
	c := MinistryCategory(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := Catalog[c]; !ok {
		return CategoryGeneral, fmt.Errorf("unknown ministry category %q", raw)
	}
	return c, nil
}

// ValidateCatalog checks every category has a complete profile.
func ValidateCatalog() error {
	for _, c := range AllCategories {
		p, ok := Catalog[c]
		if !ok {
			return fmt.Errorf("category %s missing from catalog", c)
		}
		if p.RequiredGifts.IsEmpty() {
			return fmt.Errorf("category %s has no required gifts", c)
		}
		if p.TimeCommitment == "" {
			return fmt.Errorf("category %s has no time commitment", c)
		}
	}
	return nil
}

// Ministry is an active ministry as seen by the engine. Category-derived fields are
// filled in by NewMinistry and never re-derived at scoring time.
type Ministry struct {
	ID                      string           `json:"id"`
	TenantID                string           `json:"tenantId"`
	Name                    string           `json:"name"`
	Category                MinistryCategory `json:"category"`
	RequiredGifts           IDSet            `json:"requiredGifts"`
	TimeCommitment          string           `json:"timeCommitment"`
	RequiredPreparation     []string         `json:"requiredPreparation"`
	RequiresBackgroundCheck bool             `json:"requiresBackgroundCheck"`
	CurrentVolunteerCount   int              `json:"currentVolunteerCount"`
	OptimalStaffing         int              `json:"optimalStaffing"`
}

// StaffingRule derives optimal staffing from the current volunteer count.
type StaffingRule struct {
	Floor  int     `json:"floor" mapstructure:"floor" yaml:"floor" validate:"gte=1"`
	Growth float64 `json:"growth" mapstructure:"growth" yaml:"growth" validate:"gte=1"`
}

var DefaultStaffingRule = StaffingRule{Floor: 3, Growth: 1.2}

// Optimal returns max(Floor, ceil(current*Growth)).
func (r StaffingRule) Optimal(current int) int {
	if current < 0 {
		current = 0
	}
	grown := int(math.Ceil(float64(current) * r.Growth))
	if grown < r.Floor {
		return r.Floor
	}
	return grown
}

// NewMinistry resolves the category profile and staffing for a ministry record.
func NewMinistry(id, tenantID, name string, category MinistryCategory, currentVolunteers int, rule StaffingRule) Ministry {
	profile, ok := Catalog[category]
	if !ok {
		category = CategoryGeneral
		profile = Catalog[CategoryGeneral]
	}
	if currentVolunteers < 0 {
		currentVolunteers = 0
	}
	prep := make([]string, len(profile.RequiredPreparation))
	copy(prep, profile.RequiredPreparation)

	return Ministry{
		ID:                      id,
		TenantID:                tenantID,
		Name:                    name,
		Category:                category,
		RequiredGifts:           profile.RequiredGifts,
		TimeCommitment:          profile.TimeCommitment,
		RequiredPreparation:     prep,
		RequiresBackgroundCheck: profile.RequiresBackgroundCheck,
		CurrentVolunteerCount:   currentVolunteers,
		OptimalStaffing:         rule.Optimal(currentVolunteers),
	}
}
