package cache

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// HTTPSourceConfig holds configuration for the HTTP-backed source.
type HTTPSourceConfig struct {
	// BaseURL is the collection endpoint; a key resolves to GET BaseURL/{key}.
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// HTTPSource is a generic Fetcher that resolves keys against a REST endpoint,
// decoding the JSON response body into V. A 404 response is reported as
// ErrNotFound.
type HTTPSource[K comparable, V any] struct {
	resty  *resty.Client
	logger zerolog.Logger
}

// NewHTTPSource creates a new generic HTTPSource.
func NewHTTPSource[K comparable, V any](
	cfg *HTTPSourceConfig,
	logger zerolog.Logger,
) (*HTTPSource[K, V], error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	rc := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}

	logger.Info().Str("base_url", cfg.BaseURL).Msg("HTTPSource initialized.")

	return &HTTPSource[K, V]{
		resty:  rc,
		logger: logger.With().Str("component", "HTTPSource").Logger(),
	}, nil
}

// Fetch issues a GET for key and decodes the response.
func (s *HTTPSource[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	var zero V
	stringKey := fmt.Sprintf("%v", key)

	var value V
	resp, err := s.resty.R().
		SetContext(ctx).
		SetResult(&value).
		Get("/" + url.PathEscape(stringKey))
	if err != nil {
		s.logger.Error().Err(err).Str("key", stringKey).Msg("HTTP fetch failed.")
		return zero, fmt.Errorf("http get for %s: %w", stringKey, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		s.logger.Debug().Str("key", stringKey).Msg("Key not found at HTTP source.")
		return zero, fmt.Errorf("key '%s': %w", stringKey, ErrNotFound)
	}
	if resp.IsError() {
		s.logger.Error().Int("status", resp.StatusCode()).Str("key", stringKey).Msg("HTTP fetch returned an error status.")
		return zero, fmt.Errorf("http get for %s: status %d", stringKey, resp.StatusCode())
	}

	s.logger.Debug().Str("key", stringKey).Msg("Fetched data over HTTP.")
	return value, nil
}

// Close is a no-op; the HTTP client holds no resources needing explicit
// shutdown.
func (s *HTTPSource[K, V]) Close() error {
	return nil
}
