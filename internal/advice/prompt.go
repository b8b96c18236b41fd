package advice

import (
	"fmt"
	"strings"
)

// Prompt is the instruction text sent to the completion service.
type Prompt string

func (p Prompt) String() string {
	return string(p)
}

// BuildPrompt renders the request for in. It never fails: blank symptoms
// still produce a well-formed prompt, callers validate before sending.
//
// The field names requested here are the ones Parse reads back.
func BuildPrompt(in Input) Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a helpful healthcare assistant. The user reports the following symptoms: %s.\n\n", in.Symptoms)
	b.WriteString("Please respond in JSON format with the following structure:\n")
	b.WriteString("{\n")
	b.WriteString(`  "category": "Dangerous|Mild|Normal",` + "\n")

	fields := []string{`  "reliefSteps": ["step1", "step2", "step3"]`}
	if in.IncludeDiet {
		fields = append(fields, `  "dietTips": {"foods": ["food1", "food2"], "recipes": ["recipe1 with details", "recipe2 with details"]}`)
	}
	if in.IncludeExercise {
		fields = append(fields, `  "exerciseTips": {"exercises": ["exercise1 with type, reps/duration, and description", "exercise2 with type, reps/duration, and description"]}`)
	}
	b.WriteString(strings.Join(fields, ",\n"))
	b.WriteString("\n}\n\n")

	b.WriteString("Categorize the condition as exactly one of Dangerous, Mild, or Normal. Suggest practical relief steps.\n")
	if in.IncludeDiet {
		b.WriteString("Include exactly 2 healthy foods with detailed recipes.\n")
	}
	if in.IncludeExercise {
		b.WriteString("Include exactly 2 home exercises appropriate for the health condition " +
			"(gentle for Dangerous or Mild, moderate for Normal), each with type, reps/duration, and a brief description.\n")
	}
	b.WriteString("\nRespond with the JSON object only. Keep responses professional and clear.")

	return Prompt(b.String())
}
