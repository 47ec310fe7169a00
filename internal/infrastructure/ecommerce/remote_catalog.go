package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
)

const remoteProductsPath = "/api/v1/adapters/products"

// RemoteCatalogClient reads the aggregated snapshot exposed by another hub
// instance. It lets the reconciler run in its own deployment.
type RemoteCatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ integration.CatalogSource = (*RemoteCatalogClient)(nil)

// NewRemoteCatalogClient creates a client for the hub at baseURL
func NewRemoteCatalogClient(baseURL string, timeout time.Duration) (*RemoteCatalogClient, error) {
	cfg := &PartnerConfig{BaseURL: baseURL, Timeout: timeout}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RemoteCatalogClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListAll fetches the remote snapshot. Unlike an adapter it reports every
// failure so the reconciler can refuse to run on a missing snapshot.
func (c *RemoteCatalogClient) ListAll(ctx context.Context) ([]catalog.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+remoteProductsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("remote catalog: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPartnerUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrPartnerUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPartnerRequestFailed, resp.StatusCode)
	}

	products, err := decodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPartnerInvalidResponse, err)
	}
	return products, nil
}

// decodeSnapshot accepts both the hub response envelope and a bare list
func decodeSnapshot(body []byte) ([]catalog.Product, error) {
	var envelope struct {
		Success bool              `json:"success"`
		Data    []catalog.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Success {
		if envelope.Data == nil {
			return []catalog.Product{}, nil
		}
		return envelope.Data, nil
	}

	var products []catalog.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, err
	}
	return products, nil
}
