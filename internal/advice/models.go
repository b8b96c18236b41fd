package advice

import "strings"

// Input is what the user fills in before asking for advice.
type Input struct {
	Symptoms        string `json:"symptoms"`
	IncludeDiet     bool   `json:"include_diet"`
	IncludeExercise bool   `json:"include_exercise"`
}

// HasSymptoms reports whether the symptom text is non-blank.
func (in Input) HasSymptoms() bool {
	return strings.TrimSpace(in.Symptoms) != ""
}

type Category string

const (
	CategoryDangerous    Category = "Dangerous"
	CategoryMild         Category = "Mild"
	CategoryNormal       Category = "Normal"
	CategoryUnrecognized Category = "Unrecognized"
)

// ParseCategory matches label case-insensitively against the three known
// categories and returns the canonical value.
func ParseCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range []Category{CategoryDangerous, CategoryMild, CategoryNormal} {
		if strings.EqualFold(label, string(c)) {
			return c, true
		}
	}
	return CategoryUnrecognized, false
}

// Tone is the presentation hint attached to a category.
type Tone string

const (
	ToneDestructive Tone = "destructive"
	ToneWarning     Tone = "warning"
	ToneSuccess     Tone = "success"
	ToneNeutral     Tone = "secondary"
)

func (c Category) Tone() Tone {
	switch c {
	case CategoryDangerous:
		return ToneDestructive
	case CategoryMild:
		return ToneWarning
	case CategoryNormal:
		return ToneSuccess
	default:
		return ToneNeutral
	}
}

type DietTips struct {
	Foods   []string `json:"foods"`
	Recipes []string `json:"recipes"`
}

type ExerciseTips struct {
	Exercises []string `json:"exercises"`
}

// HealthAdvice is the typed result shown to the user. CategoryLabel keeps the
// text the service used, which matters when Category is Unrecognized.
type HealthAdvice struct {
	Category      Category      `json:"category"`
	CategoryLabel string        `json:"category_label"`
	ReliefSteps   []string      `json:"relief_steps"`
	DietTips      *DietTips     `json:"diet_tips,omitempty"`
	ExerciseTips  *ExerciseTips `json:"exercise_tips,omitempty"`
}

func (a HealthAdvice) Tone() Tone {
	return a.Category.Tone()
}
