package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 5 * time.Second
)

// Backend is the single blocking call toward the text-generation
// provider. Rate limiting must be distinguishable from other failures
// by the error's string representation.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ThrottledError reports that every attempt hit the provider's rate
// limit. Callers should surface a "try again shortly" message rather
// than a generic failure.
type ThrottledError struct {
	Attempts int
	Err      error
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("generation rate limited after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ThrottledError) Unwrap() error { return e.Err }

// GenerationError wraps any non-rate-limit backend failure. It is never
// retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Client drives a Backend with rate-limit retries. The backoff doubles
// per attempt and suspends only the calling goroutine; cancelling the
// context abandons the remaining attempts.
type Client struct {
	backend     Backend
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewClient(backend Backend, logger *zap.Logger) *Client {
	return &Client{
		backend:     backend,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Generate sends the prompt pair to the backend. Rate-limit errors are
// retried up to maxAttempts with exponential backoff; exhaustion yields
// *ThrottledError, any other failure yields *GenerationError at once.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		text, err := c.backend.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, nil
		}

		if !isRateLimit(err) {
			return "", &GenerationError{Err: err}
		}
		lastErr = err

		if attempt < c.maxAttempts-1 {
			delay := c.baseDelay * (1 << attempt)
			c.logger.Warn("generation rate limited, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
	}

	return "", &ThrottledError{Attempts: c.maxAttempts, Err: lastErr}
}

var rateLimitMarkers = []string{
	"429",
	"resource exhausted",
	"resourceexhausted",
	"too many requests",
	"toomanyrequests",
	"rate limit",
}

func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
