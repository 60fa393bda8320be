package bibleapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"versecache/internal/content"
)

// Fetcher fetches a single chapter from a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, book string, chapter int, translation string) (*content.Unit, error)
}

// BreakerConfig holds circuit breaker settings for the fetcher.
type BreakerConfig struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a half-open probe.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "bible-api",
		MaxFailures: 3,
		OpenTimeout: 30 * time.Second,
	}
}

// BreakerFetcher short-circuits fetches while the remote API keeps failing,
// so offline callers fall through to the bundle without waiting on timeouts.
// Each call still makes at most one request.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerFetcher wraps next in a circuit breaker.
func NewBreakerFetcher(next Fetcher, cfg BreakerConfig) *BreakerFetcher {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig().MaxFailures
	}
	maxFailures := cfg.MaxFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the remote API
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerFetcher{next: next, cb: cb}
}

// Fetch delegates to the wrapped fetcher unless the breaker is open.
func (b *BreakerFetcher) Fetch(ctx context.Context, book string, chapter int, translation string) (*content.Unit, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Fetch(ctx, book, chapter, translation)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return nil, err
	}

	unit, ok := result.(*content.Unit)
	if !ok || unit == nil {
		return nil, fmt.Errorf("%w: empty result", ErrFetchFailed)
	}
	return unit, nil
}

// State reports the breaker state ("closed", "open", "half-open").
func (b *BreakerFetcher) State() string {
	return b.cb.State().String()
}
