package ai

import (
	"context"

	"github.com/fdg312/curo/internal/advice"
)

// Provider sends one prompt to a completion service and returns the text of
// the single completion, untouched. Implementations make at most one
// outbound request per call and never retry.
type Provider interface {
	Send(ctx context.Context, prompt advice.Prompt, credential string) (string, error)
}
