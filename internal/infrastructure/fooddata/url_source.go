package fooddata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/manmaru/backend/internal/domain"
)

const (
	defaultURLTimeout = 30 * time.Second
	maxAttempts       = 3
)

// URLSource downloads the dataset over HTTP.
type URLSource struct {
	client  *resty.Client
	url     string
	logger  *zap.Logger
	backoff func(attempt int) time.Duration
}

// NewURLSource creates a source fetching url. timeout <= 0 uses 30s.
func NewURLSource(url string, timeout time.Duration, logger *zap.Logger) *URLSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultURLTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "manmaru-nutrition/1.0")

	return &URLSource{
		client:  client,
		url:     url,
		logger:  logger,
		backoff: exponentialBackoff,
	}
}

// LoadFoods fetches and decodes the dataset, retrying transient failures.
func (s *URLSource) LoadFoods(ctx context.Context) ([]domain.Food, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(s.backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := s.client.R().
			SetContext(ctx).
			Get(s.url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("dataset download failed",
				zap.String("url", s.url),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastErr = fmt.Errorf("%w: %v", domain.ErrDatasetLoad, err)
			continue
		}

		status := resp.StatusCode()
		if status != http.StatusOK {
			s.logger.Warn("dataset download returned an error status",
				zap.String("url", s.url),
				zap.Int("attempt", attempt),
				zap.Int("status", status),
			)
			lastErr = fmt.Errorf("%w: status %d from %s", domain.ErrDatasetLoad, status, s.url)
			if !retryable(status) {
				return nil, lastErr
			}
			continue
		}

		return Decode(resp.Body(), s.logger.With(zap.String("source", s.Describe())))
	}

	s.logger.Error("all dataset download attempts failed", zap.String("url", s.url))
	return nil, lastErr
}

// Describe names the source for logs.
func (s *URLSource) Describe() string {
	return "url:" + s.url
}

// retryable reports whether a status is worth another attempt
func retryable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// exponentialBackoff returns 500ms, 1s, 2s... for attempts 1, 2, 3...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}
