package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"skybridge/internal/metrics"
	"skybridge/internal/model"
)

// ExtractionAttempts is the first call plus exactly one retry
const ExtractionAttempts = 2

var (
	// ErrExtractorUnavailable is returned once every attempt has failed
	ErrExtractorUnavailable = errors.New("extractor unavailable")
	// ErrEmptyResponse is returned when a provider answers without content
	ErrEmptyResponse = errors.New("empty extractor response")
)

// Extractor turns a free-text utterance plus dialogue context into a structured
// best-effort guess. Implementations must not invent values, must emit explicit dates
// as YYYY-MM-DD resolved against req.Today, and must report relative return dates as
// a RelativeDateInference instead of computing them.
type Extractor interface {
	Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error)
}

// ExtractorFunc adapts a function to the Extractor interface
type ExtractorFunc func(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error)

// Extract calls f
func (f ExtractorFunc) Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	return f(ctx, req)
}

// RetryingExtractor retries a failed extraction once with the identical request
type RetryingExtractor struct {
	next     Extractor
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// WithRetry wraps next. A positive timeout bounds each attempt separately.
func WithRetry(next Extractor, provider string, timeout time.Duration, logger *zap.Logger) *RetryingExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingExtractor{
		next:     next,
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Extract performs at most ExtractionAttempts calls. A cancelled parent context
// stops further attempts.
func (r *RetryingExtractor) Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	var lastErr error
	for attempt := 1; attempt <= ExtractionAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		result, err := r.attempt(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		r.logger.Warn("extraction attempt failed",
			zap.String("provider", r.provider),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("%w: %w", ErrExtractorUnavailable, lastErr)
}

func (r *RetryingExtractor) attempt(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := r.next.Extract(ctx, req)
	metrics.ExtractionDuration.WithLabelValues(r.provider).Observe(time.Since(start).Seconds())

	if err == nil && result == nil {
		err = ErrEmptyResponse
	}

	outcome := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	metrics.ExtractionAttemptsTotal.WithLabelValues(r.provider, outcome).Inc()

	return result, err
}
