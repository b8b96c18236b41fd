package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fdg312/curo/internal/advice"
)

// MockProvider answers without any network call. It still honours the
// credential contract so the mock mode exercises the same guard paths.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Send(ctx context.Context, prompt advice.Prompt, credential string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", transportError(err)
	}
	if strings.TrimSpace(credential) == "" {
		return "", ErrAuthMissing
	}

	text := prompt.String()
	reply := map[string]any{
		"category": "Mild",
		"reliefSteps": []string{
			"Rest in a quiet, comfortable place.",
			"Drink water regularly through the day.",
			"Contact a doctor if symptoms get worse or last more than a few days.",
		},
	}
	if strings.Contains(text, `"dietTips"`) {
		reply["dietTips"] = map[string]any{
			"foods": []string{"Ginger", "Oatmeal"},
			"recipes": []string{
				"Ginger tea: simmer sliced fresh ginger in water for 10 minutes, add honey and lemon.",
				"Oatmeal: cook rolled oats in milk for 5 minutes, top with banana slices.",
			},
		}
	}
	if strings.Contains(text, `"exerciseTips"`) {
		reply["exerciseTips"] = map[string]any{
			"exercises": []string{
				"Neck stretch: flexibility, hold 20 seconds per side, slowly tilt the head toward each shoulder.",
				"Walking: light cardio, 15 minutes, easy pace indoors or outside.",
			},
		}
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return "", rejectedError(0, err)
	}
	return string(body), nil
}
