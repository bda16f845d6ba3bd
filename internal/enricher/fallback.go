package enricher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// Disclaimer accompanies every AI analysis.
const Disclaimer = "This is an AI-generated analysis for informational purposes only. " +
	"Always consult with a qualified healthcare professional for medical advice."

// Fallback returns the canned analysis used when no provider produced one.
func Fallback(err error) *domain.AIAnalysis {
	if err != nil {
		log.Printf("enricher.Fallback: using canned analysis: %v", err)
	}
	return &domain.AIAnalysis{
		Summary:         "AI analysis unavailable. Please review the extracted text manually.",
		KeyFindings:     []string{"Unable to generate AI analysis"},
		Parameters:      []domain.AIParameter{},
		Concerns:        []string{"AI analysis failed - manual review recommended"},
		Recommendations: []string{"Consult with a healthcare professional for proper interpretation"},
		Disclaimer:      Disclaimer,
		Fallback:        true,
	}
}

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

// FallbackEnricher tries enrichers in order, skipping those cooling down
// after a rate limit. It implements port.ReportEnricher.
type FallbackEnricher struct {
	enrichers []port.ReportEnricher
	circuits  []*circuitState
	now       func() time.Time
}

// NewFallbackEnricher creates a FallbackEnricher from an ordered list of enrichers.
func NewFallbackEnricher(enrichers ...port.ReportEnricher) *FallbackEnricher {
	circuits := make([]*circuitState, len(enrichers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackEnricher{
		enrichers: enrichers,
		circuits:  circuits,
		now:       time.Now,
	}
}

func (f *FallbackEnricher) Name() string {
	names := make([]string, len(f.enrichers))
	for i, e := range f.enrichers {
		names[i] = e.Name()
	}
	return strings.Join(names, ",")
}

func (f *FallbackEnricher) Enrich(ctx context.Context, input port.EnrichInput) (*domain.AIAnalysis, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.enrichers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("enricher.FallbackEnricher: skipping %s (circuit open until %s)", e.Name(), resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := e.Enrich(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Printf("enricher.FallbackEnricher: %s failed: %v", e.Name(), err)
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
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all enrichers rate limited: %w", domain.ErrRateLimited), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all enrichers failed: %w", lastErr)
}
