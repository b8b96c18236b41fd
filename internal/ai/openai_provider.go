package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fdg312/curo/internal/advice"
	"github.com/fdg312/curo/internal/config"
)

const DefaultOpenAIModel = openai.GPT3Dot5Turbo

type OpenAIProvider struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	model := strings.TrimSpace(cfg.OpenAIModel)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		baseURL:     strings.TrimSpace(cfg.OpenAIBaseURL),
		model:       model,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: float32(cfg.AITemperature),
	}
}

// Send builds a client for the caller's credential, so keys saved per
// session are never shared between requests.
func (p *OpenAIProvider) Send(ctx context.Context, prompt advice.Prompt, credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", ErrAuthMissing
	}

	clientCfg := openai.DefaultConfig(credential)
	if p.baseURL != "" {
		clientCfg.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.String()},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", rejectedError(0, errors.New("response does not contain choices"))
	}

	return resp.Choices[0].Message.Content, nil
}

// classify sorts go-openai errors into the three failure kinds. A reply that
// arrived but could not be decoded counts as a rejection.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return rejectedError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return rejectedError(reqErr.HTTPStatusCode, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return transportError(err)
	}

	return rejectedError(0, fmt.Errorf("decode completion: %w", err))
}
