package advice

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Source tells which path Parse took.
type Source string

const (
	SourceStructured Source = "structured"
	SourceFallback   Source = "fallback"
)

// Parsed is always usable: either the decoded reply or the degraded
// single-step record built from the raw text.
type Parsed struct {
	Advice HealthAdvice
	Source Source
}

func (p Parsed) Degraded() bool {
	return p.Source == SourceFallback
}

type replyEnvelope struct {
	Category     json.RawMessage `json:"category"`
	ReliefSteps  json.RawMessage `json:"reliefSteps"`
	DietTips     json.RawMessage `json:"dietTips"`
	ExerciseTips json.RawMessage `json:"exerciseTips"`
}

type dietEnvelope struct {
	Foods   json.RawMessage `json:"foods"`
	Recipes json.RawMessage `json:"recipes"`
}

type exerciseEnvelope struct {
	Exercises json.RawMessage `json:"exercises"`
}

// Parse turns the completion text into advice. It does not fail; anything
// that cannot be read as the requested object becomes a Normal record whose
// only relief step is raw, unchanged.
func Parse(raw string) Parsed {
	if a, ok := decodeStructured(raw); ok {
		return Parsed{Advice: a, Source: SourceStructured}
	}
	return Parsed{Advice: fallback(raw), Source: SourceFallback}
}

func fallback(raw string) HealthAdvice {
	return HealthAdvice{
		Category:      CategoryNormal,
		CategoryLabel: string(CategoryNormal),
		ReliefSteps:   []string{raw},
	}
}

func decodeStructured(raw string) (HealthAdvice, bool) {
	for _, candidate := range jsonCandidates(raw) {
		var env replyEnvelope
		if err := json.Unmarshal([]byte(candidate), &env); err != nil {
			continue
		}
		if a, ok := env.advice(); ok {
			return a, true
		}
	}
	return HealthAdvice{}, false
}

// jsonCandidates yields the reply with code fences removed, and the outermost
// brace-delimited span when the model wrapped the object in prose.
func jsonCandidates(raw string) []string {
	s := stripCodeFence(raw)
	if s == "" {
		return nil
	}
	out := []string{s}
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start != -1 && end > start {
		if inner := s[start : end+1]; inner != s {
			out = append(out, inner)
		}
	}
	return out
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 1 {
		lines = lines[1:]
	} else {
		lines = []string{strings.TrimPrefix(s, "```")}
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	s = strings.TrimSpace(strings.Join(lines, "\n"))
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func (env replyEnvelope) advice() (HealthAdvice, bool) {
	var label string
	if err := json.Unmarshal(env.Category, &label); err != nil {
		return HealthAdvice{}, false
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return HealthAdvice{}, false
	}

	steps, ok := textList(env.ReliefSteps)
	if !ok || len(steps) == 0 {
		return HealthAdvice{}, false
	}

	category, known := ParseCategory(label)
	if known {
		label = string(category)
	}

	return HealthAdvice{
		Category:      category,
		CategoryLabel: label,
		ReliefSteps:   steps,
		DietTips:      decodeDiet(env.DietTips),
		ExerciseTips:  decodeExercise(env.ExerciseTips),
	}, true
}

// Optional sections that are missing, empty or malformed are left out.
func decodeDiet(raw json.RawMessage) *DietTips {
	if isNull(raw) {
		return nil
	}
	var env dietEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	foods, _ := textList(env.Foods)
	recipes, _ := textList(env.Recipes)
	if len(foods) == 0 && len(recipes) == 0 {
		return nil
	}
	return &DietTips{Foods: foods, Recipes: recipes}
}

func decodeExercise(raw json.RawMessage) *ExerciseTips {
	if isNull(raw) {
		return nil
	}
	var env exerciseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	exercises, _ := textList(env.Exercises)
	if len(exercises) == 0 {
		return nil
	}
	return &ExerciseTips{Exercises: exercises}
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// textList accepts a single string or an array whose items are strings or
// small objects. Blank entries are dropped.
func textList(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return nil, false
	}

	// String entries are kept as sent; only blank ones are dropped.
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return nil, true
		}
		return []string{single}, true
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok {
			if strings.TrimSpace(text) != "" {
				out = append(out, text)
			}
			continue
		}
		if text := flatten(item); text != "" {
			out = append(out, text)
		}
	}
	return out, true
}

// Keys that lead when an object entry is flattened to one line.
var leadingKeys = []string{"name", "title", "type", "reps", "duration", "description"}

func flatten(item any) string {
	switch v := item.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		seen := make(map[string]bool, len(v))
		parts := make([]string, 0, len(v))
		for _, k := range leadingKeys {
			if val, ok := v[k]; ok {
				seen[k] = true
				if s := flatten(val); s != "" {
					parts = append(parts, fmt.Sprintf("%s: %s", k, s))
				}
			}
		}
		rest := make([]string, 0, len(v))
		for k := range v {
			if !seen[k] {
				rest = append(rest, k)
			}
		}
		sort.Strings(rest)
		for _, k := range rest {
			if s := flatten(v[k]); s != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, s))
			}
		}
		return strings.Join(parts, "; ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if s := flatten(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
