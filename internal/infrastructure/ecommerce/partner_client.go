package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a partner API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// BreakerSettings configures the per-partner circuit breaker
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

// statusError is returned from inside the breaker for 5xx answers so they
// count as failures while still being reported as a negative answer.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.code)
}

// partnerClient is the HTTP transport shared by the partner adapters
type partnerClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func newPartnerClient(name, baseURL string, timeout time.Duration, bs BreakerSettings, logger *zap.Logger) *partnerClient {
	if bs.MaxFailures == 0 {
		bs.MaxFailures = 3
	}
	if bs.OpenTimeout <= 0 {
		bs.OpenTimeout = 30 * time.Second
	}
	maxFailures := bs.MaxFailures

	c := &partnerClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Partner circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// do sends one request through the breaker and returns the response body
// of a 2xx answer. Non-2xx answers are reported as *statusError.
func (c *partnerClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", c.name, err)
		}
		body = bytes.NewReader(raw)
	}

	var clientErr *statusError
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create request: %w", c.name, err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrPartnerUnavailable, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPartnerUnavailable, err)
		}

		if resp.StatusCode >= 500 {
			return nil, &statusError{code: resp.StatusCode}
		}
		if resp.StatusCode >= 300 {
			// 4xx is the partner's answer, not a partner failure
			clientErr = &statusError{code: resp.StatusCode}
			return nil, nil
		}
		return respBody, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s circuit open", integration.ErrPartnerUnavailable, c.name)
		}
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return result.([]byte), nil
}

// getJSON decodes a 2xx GET response into out
func (c *partnerClient) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return fmt.Errorf("%w: %s", integration.ErrPartnerRequestFailed, se)
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPartnerInvalidResponse, err)
	}
	return nil
}

// postBool posts payload and interprets the answer as a boolean.
// A non-2xx status or a payload that is not a boolean yields false, nil.
func (c *partnerClient) postBool(ctx context.Context, path string, payload any) (bool, error) {
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			c.logger.Warn("Partner answered with error status",
				zap.String("provider", c.name),
				zap.String("path", path),
				zap.Int("status", se.code),
			)
			return false, nil
		}
		return false, err
	}
	return parseBoolAnswer(body), nil
}

// parseBoolAnswer accepts true, "true" and their JSON encodings
func parseBoolAnswer(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		ok, perr := strconv.ParseBool(string(trimmed))
		return perr == nil && ok
	}
	switch answer := v.(type) {
	case bool:
		return answer
	case string:
		ok, err := strconv.ParseBool(strings.TrimSpace(answer))
		return err == nil && ok
	default:
		return false
	}
}
