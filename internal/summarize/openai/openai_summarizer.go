package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ordercheck/internal/config"
	"ordercheck/internal/port"
	"ordercheck/internal/summarize"
)

// Summarizer implements port.Summarizer using the OpenAI Chat Completions API.
type Summarizer struct {
	client *goopenai.Client
	model  string
}

// New creates an OpenAI-based summarizer from a provider config.
func New(cfg *config.SummarizerProviderConfig) *Summarizer {
	return newSummarizer(cfg, "")
}

// NewWithBaseURL creates a summarizer pointing at a custom API base URL (for testing
// or OpenAI-compatible gateways).
func NewWithBaseURL(cfg *config.SummarizerProviderConfig, baseURL string) *Summarizer {
	return newSummarizer(cfg, baseURL)
}

func newSummarizer(cfg *config.SummarizerProviderConfig, baseURL string) *Summarizer {
	model := cfg.DefaultModel
	if model == "" {
		model = goopenai.GPT4o
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Summarizer{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, input port.SummaryInput) (*port.SummaryOutput, error) {
	prompt := summarize.BuildPrompt(input)

	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:               s.model,
		MaxCompletionTokens: 1024,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: summarize.SystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if status := httpStatus(err); status == http.StatusTooManyRequests {
			return nil, summarize.NewRateLimitError("openai", err, 0)
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("empty response from API: finish_reason %s", resp.Choices[0].FinishReason)
	}

	return &port.SummaryOutput{
		Text:       text,
		ModelUsed:  s.model,
		PromptUsed: prompt,
	}, nil
}

func httpStatus(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
