// internal/engine/onboarding/generator.go
package onboarding

import (
	"fmt"
	"math"

	"volunteer-engine/internal/models"
)

const (
	StepSpiritualAssessment = "spiritual-assessment"
	StepMinistryOrientation = "ministry-orientation"
	StepSkillsTraining      = "skills-training"
	StepBackgroundCheck     = "background-check"
	StepMentorship          = "mentorship-assignment"
	StepTrialExperience     = "trial-experience"
)

// experienceForNoTraining is the experience level at which training is skipped when the
// ministry itself asks for no preparation.
const experienceForNoTraining = 5

// Target is the ministry a path is generated for.
type Target struct {
	MinistryID              string   `json:"ministryId,omitempty"`
	MinistryName            string   `json:"ministryName"`
	RequiredPreparation     []string `json:"requiredPreparation"`
	RequiresBackgroundCheck bool     `json:"requiresBackgroundCheck"`
}

func TargetFromMatch(m models.MinistryMatch) Target {
	return Target{
		MinistryID:              m.MinistryID,
		MinistryName:            m.MinistryName,
		RequiredPreparation:     m.RequiredPreparation,
		RequiresBackgroundCheck: m.RequiresBackgroundCheck,
	}
}

// GeneralTarget is used for members with no ministry match so they still get a path.
func GeneralTarget() Target {
	profile := models.Catalog[models.CategoryGeneral]
	return Target{
		MinistryName:            "General Ministry",
		RequiredPreparation:     profile.RequiredPreparation,
		RequiresBackgroundCheck: profile.RequiresBackgroundCheck,
	}
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the prerequisite-ordered path for member toward target.
func (g *Generator) Generate(member models.MemberProfile, target Target) ([]models.OnboardingStep, error) {
	b := newPathBuilder()

	if member.SpiritualGifts.IsEmpty() {
		b.add(models.OnboardingStep{
			ID:                StepSpiritualAssessment,
			Title:             "Spiritual Gifts Assessment",
			Description:       "Complete an assessment to identify your unique spiritual gifts",
			Type:              models.StepAssessment,
			EstimatedDuration: "15-20 minutes",
			EstimatedWeeks:    0.5,
			Resources:         []string{"Gifts questionnaire", "Interpretation guide"},
		})
	}

	orientation := models.OnboardingStep{
		ID:                StepMinistryOrientation,
		Title:             fmt.Sprintf("%s Orientation", target.MinistryName),
		Description:       fmt.Sprintf("Learn the vision, mission and expectations of %s", target.MinistryName),
		Type:              models.StepOrientation,
		EstimatedDuration: "1-2 hours",
		EstimatedWeeks:    1,
		Resources:         []string{"Ministry handbook", "Welcome video", "Key contacts"},
	}
	if b.has(StepSpiritualAssessment) {
		orientation.Prerequisite = StepSpiritualAssessment
	}
	b.add(orientation)

	experience := 1
	if member.ExperienceLevel != nil {
		experience = *member.ExperienceLevel
	}
	if experience < experienceForNoTraining || len(target.RequiredPreparation) > 0 {
		duration, weeks := "2-3 hours", 1.0
		if len(target.RequiredPreparation) > 2 {
			duration, weeks = "4-6 hours", 2.0
		}
		resources := make([]string, len(target.RequiredPreparation))
		copy(resources, target.RequiredPreparation)
		b.add(models.OnboardingStep{
			ID:                StepSkillsTraining,
			Title:             "Ministry Skills Training",
			Description:       fmt.Sprintf("Training in the specific skills %s needs", target.MinistryName),
			Type:              models.StepTraining,
			Prerequisite:      StepMinistryOrientation,
			EstimatedDuration: duration,
			EstimatedWeeks:    weeks,
			Resources:         resources,
		})
	}

	if target.RequiresBackgroundCheck && !member.HasBackgroundCheck() {
		b.add(models.OnboardingStep{
			ID:                StepBackgroundCheck,
			Title:             "Background Check",
			Description:       "Complete the background check this ministry requires",
			Type:              models.StepAssessment,
			EstimatedDuration: "5-7 business days",
			EstimatedWeeks:    1.5,
			Resources:         []string{"Application form", "Document checklist"},
		})
	}

	b.add(models.OnboardingStep{
		ID:                StepMentorship,
		Title:             "Mentor Assignment",
		Description:       "Pairing with an experienced mentor for personal guidance",
		Type:              models.StepMentorship,
		Prerequisite:      StepMinistryOrientation,
		AutoComplete:      true,
		EstimatedDuration: "30 minutes initial + follow-up",
		EstimatedWeeks:    0.5,
		Resources:         []string{"Mentor profile", "Mentoring guide", "Meeting calendar"},
	})

	trialPrereq := StepMentorship
	if b.has(StepSkillsTraining) {
		trialPrereq = StepSkillsTraining
	}
	b.add(models.OnboardingStep{
		ID:                StepTrialExperience,
		Title:             "Trial Experience",
		Description:       "Serve in ministry activities under supervision before full commitment",
		Type:              models.StepExperience,
		Prerequisite:      trialPrereq,
		EstimatedDuration: "2-4 weeks",
		EstimatedWeeks:    4,
		Resources:         []string{"Activity plan", "Feedback form"},
	})

	return b.build()
}

// pathBuilder only accepts a prerequisite that was already emitted.
type pathBuilder struct {
	steps []models.OnboardingStep
	index map[string]int
	err   error
}

func newPathBuilder() *pathBuilder {
	return &pathBuilder{index: make(map[string]int)}
}

func (b *pathBuilder) has(id string) bool {
	_, ok := b.index[id]
	return ok
}

func (b *pathBuilder) add(step models.OnboardingStep) {
	if b.err != nil {
		return
	}
	if b.has(step.ID) {
		b.err = fmt.Errorf("duplicate onboarding step %q", step.ID)
		return
	}
	if step.Prerequisite != "" && !b.has(step.Prerequisite) {
		b.err = fmt.Errorf("step %q requires %q which has not been emitted", step.ID, step.Prerequisite)
		return
	}
	if step.Resources == nil {
		step.Resources = []string{}
	}
	b.index[step.ID] = len(b.steps)
	b.steps = append(b.steps, step)
}

func (b *pathBuilder) build() ([]models.OnboardingStep, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.steps, nil
}

// Validate checks that ids are unique and every prerequisite names an earlier step.
func Validate(path []models.OnboardingStep) error {
	seen := make(map[string]struct{}, len(path))
	for i, step := range path {
		if step.ID == "" {
			return fmt.Errorf("step %d has no id", i)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("duplicate onboarding step %q", step.ID)
		}
		if step.Prerequisite != "" {
			if _, ok := seen[step.Prerequisite]; !ok {
				return fmt.Errorf("step %q references %q which does not appear earlier", step.ID, step.Prerequisite)
			}
		}
		seen[step.ID] = struct{}{}
	}
	return nil
}

// EstimatedWeeks is the length of the longest prerequisite chain. Steps without a
// prerequisite start immediately and run alongside the rest. path must be valid.
func EstimatedWeeks(path []models.OnboardingStep) float64 {
	finish := make(map[string]float64, len(path))
	var longest float64
	for _, step := range path {
		end := step.EstimatedWeeks
		if step.Prerequisite != "" {
			end += finish[step.Prerequisite]
		}
		finish[step.ID] = end
		longest = math.Max(longest, end)
	}
	return longest
}
