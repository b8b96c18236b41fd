package ai

import (
	"log"
	"strings"

	"github.com/fdg312/curo/internal/config"
)

const (
	ModeMock   = "mock"
	ModeOpenAI = "openai"
)

// NewProvider builds the completion backend for cfg.AIMode. Anything other
// than openai gets the offline mock.
//
// The openai backend may start without a server key. Each client must then
// store its own through the credential service or Submit reports a missing
// credential.
func NewProvider(cfg *config.Config) Provider {
	if !strings.EqualFold(strings.TrimSpace(cfg.AIMode), ModeOpenAI) {
		return NewMockProvider()
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Printf("WARN ai: openai mode without OPENAI_API_KEY, clients must supply their own key")
	}
	return NewOpenAIProvider(cfg)
}
