// Package providers wires the built-in summarizer providers into a Factory.
package providers

import (
	"ordercheck/internal/config"
	"ordercheck/internal/port"
	"ordercheck/internal/summarize"
	"ordercheck/internal/summarize/claude"
	"ordercheck/internal/summarize/gemini"
	"ordercheck/internal/summarize/openai"
)

// NewFactory returns a Factory that knows claude, openai and gemini.
func NewFactory() *summarize.Factory {
	f := summarize.NewFactory()
	f.Register("claude", func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
		return claude.New(cfg), nil
	})
	f.Register("openai", func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
		return openai.New(cfg), nil
	})
	f.Register("gemini", func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
		return gemini.New(cfg), nil
	})
	return f
}
