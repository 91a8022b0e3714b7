// Package summarize turns a computed discrepancy report into a short natural-language
// summary using an LLM provider chain.
package summarize

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"ordercheck/internal/config"
	"ordercheck/internal/port"
)

// ProviderFactory creates a Summarizer from a provider config.
type ProviderFactory func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error)

// Factory builds summarizers from registered provider factories.
type Factory struct {
	providers map[string]ProviderFactory
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{providers: make(map[string]ProviderFactory)}
}

// Register adds a provider factory by name.
func (f *Factory) Register(name string, factory ProviderFactory) {
	f.providers[name] = factory
}

// New creates a Summarizer for one provider config.
func (f *Factory) New(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
	factory, ok := f.providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown summarizer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build creates the provider chain described by cfg. It returns nil when summarizing
// is disabled.
func (f *Factory) Build(cfg *config.SummarizerConfig, log *logrus.Logger) (port.Summarizer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	providers := cfg.Providers()
	if len(providers) == 0 {
		return nil, fmt.Errorf("summarizer enabled but no provider configured")
	}

	summarizers := make([]port.Summarizer, 0, len(providers))
	names := make([]string, 0, len(providers))
	retries := make([]int, 0, len(providers))
	for _, p := range providers {
		s, err := f.New(p)
		if err != nil {
			return nil, err
		}
		summarizers = append(summarizers, s)
		names = append(names, p.Provider)
		retries = append(retries, p.MaxRetries)
	}
	return NewFallbackSummarizer(summarizers, names, retries, log), nil
}
