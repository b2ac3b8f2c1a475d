// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// Guard bounds the number of in-flight completions and stops calling a
// provider after repeated failures until its open timeout elapses.
type Guard struct {
	next    Completer
	sem     *semaphore.Weighted
	breaker *gobreaker.CircuitBreaker[string]
}

// NewGuard wraps next. MaxConcurrent <= 0 means unbounded; BreakerFailures
// == 0 disables the breaker.
func NewGuard(next Completer, cfg types.CompletionConfig, logger *slog.Logger) *Guard {
	g := &Guard{next: next}
	if cfg.MaxConcurrent > 0 {
		g.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	if cfg.BreakerFailures > 0 {
		g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:    "completion",
			Timeout: cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, ErrNotConfigured) ||
					errors.Is(err, context.Canceled) ||
					errors.Is(err, context.DeadlineExceeded)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if logger != nil {
					logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
				}
			},
		})
	}
	return g
}

// Complete forwards to the wrapped provider.
func (g *Guard) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.sem != nil {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return "", err
		}
		defer g.sem.Release(1)
	}
	if g.breaker == nil {
		return g.next.Complete(ctx, prompt, maxTokens)
	}
	return g.breaker.Execute(func() (string, error) {
		return g.next.Complete(ctx, prompt, maxTokens)
	})
}

// IsCircuitOpen reports whether err came from an open or half-open breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
