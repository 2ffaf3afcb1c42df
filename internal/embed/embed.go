// Package embed defines the external embedding-provider collaborator
// interface for turning raw text into vectors. No other vectorkit package
// calls it: ingest and search take precomputed vectors. Generating
// embeddings is out of scope:
// only the client boundary and one HTTP-based implementation live here.
package embed

import (
	"context"
	"time"
)

// Provider generates vector embeddings for text, backed by an external
// model-serving process (e.g. Ollama, a hosted embedding API).
type Provider interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one round trip.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension this provider produces.
	Dimensions() int

	// ModelName returns the model identifier, used to key cache entries.
	ModelName() string

	// Available reports whether the provider is currently reachable.
	Available(ctx context.Context) bool
}

// RetryConfig configures exponential backoff retry around a Provider call.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns sensible backoff defaults for a remote
// embedding call.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetry executes fn, retrying on error with exponential backoff up to
// cfg.MaxRetries additional attempts.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err != nil {
			lastErr = err
			if attempt >= cfg.MaxRetries {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			continue
		}
		return nil
	}
	return lastErr
}
