package ecommerce

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bookingplatform/backend/internal/infrastructure/config"
)

// Errors for partner configuration
var (
	ErrPartnerConfigMissingBaseURL = errors.New("ecommerce: partner base URL is required")
	ErrPartnerConfigInvalidBaseURL = errors.New("ecommerce: partner base URL must be absolute")
)

const defaultPartnerTimeout = 10 * time.Second

// PartnerConfig holds the connection settings of one partner adapter
type PartnerConfig struct {
	// BaseURL is the partner API root, e.g. http://cde-mock:5001
	BaseURL string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// AcceptAll answers every checkout and sale with true without a network call
	AcceptAll bool
	// Breaker configures the circuit breaker around the partner
	Breaker BreakerSettings
}

// NewPartnerConfig builds a PartnerConfig from the hub settings
func NewPartnerConfig(p config.PartnerConfig, b config.BreakerConfig) *PartnerConfig {
	return &PartnerConfig{
		BaseURL:   p.BaseURL,
		Timeout:   p.Timeout,
		AcceptAll: p.AcceptAll,
		Breaker: BreakerSettings{
			MaxFailures: b.MaxFailures,
			OpenTimeout: b.OpenTimeout,
		},
	}
}

// Validate validates the configuration and fills defaults
func (c *PartnerConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrPartnerConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrPartnerConfigInvalidBaseURL, c.BaseURL)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPartnerTimeout
	}
	return nil
}
