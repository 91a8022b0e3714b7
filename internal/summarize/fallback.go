package summarize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ordercheck/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackSummarizer tries providers in order, skipping those with open circuits.
// It implements port.Summarizer.
type FallbackSummarizer struct {
	summarizers []port.Summarizer
	circuits    []*circuitState
	names       []string
	retries     []int
	log         *logrus.Logger
	now         func() time.Time
}

// NewFallbackSummarizer creates a FallbackSummarizer. retries[i] extra attempts are
// made on provider i for errors other than rate limiting; a short slice means none.
func NewFallbackSummarizer(summarizers []port.Summarizer, names []string, retries []int, log *logrus.Logger) *FallbackSummarizer {
	circuits := make([]*circuitState, len(summarizers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &FallbackSummarizer{
		summarizers: summarizers,
		circuits:    circuits,
		names:       names,
		retries:     retries,
		log:         log,
		now:         time.Now,
	}
}

func (f *FallbackSummarizer) name(i int) string {
	if i < len(f.names) {
		return f.names[i]
	}
	return fmt.Sprintf("provider-%d", i)
}

func (f *FallbackSummarizer) attempts(i int) int {
	if i < len(f.retries) && f.retries[i] > 0 {
		return f.retries[i] + 1
	}
	return 1
}

func (f *FallbackSummarizer) Summarize(ctx context.Context, input port.SummaryInput) (*port.SummaryOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, s := range f.summarizers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.WithField("provider", f.name(i)).
				Infof("summarize.FallbackSummarizer: skipping (circuit open until %s)", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := f.try(ctx, i, s, input)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all summarizers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all summarizers failed: %w", lastErr)
}

func (f *FallbackSummarizer) try(ctx context.Context, i int, s port.Summarizer, input port.SummaryInput) (*port.SummaryOutput, error) {
	var err error
	for attempt := 1; attempt <= f.attempts(i); attempt++ {
		var out *port.SummaryOutput
		out, err = s.Summarize(ctx, input)
		if err == nil {
			return out, nil
		}
		f.log.WithFields(logrus.Fields{
			"provider": f.name(i),
			"attempt":  attempt,
		}).WithError(err).Warn("summarize.FallbackSummarizer: provider failed")

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, err
}
