package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

const requestTimeout = 3 * time.Second

// InventoryClient wraps the HTTP client for the inventory service. The
// service is the single owner of product, category, brand and threshold
// data; this client performs the four reads and two writes the view engine
// needs and nothing else. Transport failures are reported as plain errors;
// retries are the caller's decision, and no caller retries.
type InventoryClient struct {
	baseURL string
	client  *http.Client
}

// NewInventoryClient creates a new inventory service client
func NewInventoryClient(baseURL string) *InventoryClient {
	logger.Logger.Info().
		Str("base_url", baseURL).
		Msg("Inventory service client initialized")

	return &InventoryClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// FetchSortedProducts fetches the full product collection, service-side
// sorted by the given key and annotated with the user's favorite flags.
// An empty userID is valid: the service returns the collection with all
// favorite flags false.
func (c *InventoryClient) FetchSortedProducts(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("order_by", string(key.Field))
	params.Set("direction", string(key.Direction))
	if userID != "" {
		params.Set("user_id", userID)
	}

	var products []domain.Product
	if err := c.getJSON(ctx, "/api/products?"+params.Encode(), &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// FetchCategories fetches all category facets
func (c *InventoryClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.getJSON(ctx, "/api/categories", &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// FetchBrands fetches all brand facets
func (c *InventoryClient) FetchBrands(ctx context.Context) ([]domain.Brand, error) {
	var brands []domain.Brand
	if err := c.getJSON(ctx, "/api/brands", &brands); err != nil {
		return nil, fmt.Errorf("failed to fetch brands: %w", err)
	}
	return brands, nil
}

// FetchCriticalThreshold fetches the critical stock threshold
func (c *InventoryClient) FetchCriticalThreshold(ctx context.Context) (int, error) {
	var resp struct {
		Value int `json:"value"`
	}
	if err := c.getJSON(ctx, "/api/settings/critical-threshold", &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch critical threshold: %w", err)
	}
	return resp.Value, nil
}

// UpdateCriticalThreshold propagates a threshold edit to the service
// (last-writer-wins)
func (c *InventoryClient) UpdateCriticalThreshold(ctx context.Context, value int) error {
	body, err := json.Marshal(map[string]int{"value": value})
	if err != nil {
		return fmt.Errorf("failed to marshal threshold: %w", err)
	}

	if err := c.do(ctx, http.MethodPut, "/api/settings/critical-threshold", body, nil); err != nil {
		return fmt.Errorf("failed to update critical threshold: %w", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag for a (product, user) pair and
// returns the server-confirmed flag value
func (c *InventoryClient) ToggleFavorite(ctx context.Context, productID uint, userID string) (bool, error) {
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to marshal toggle request: %w", err)
	}

	var resp struct {
		IsFavorite bool `json:"is_favorite"`
	}
	path := fmt.Sprintf("/api/products/%d/favorite", productID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return resp.IsFavorite, nil
}

func (c *InventoryClient) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *InventoryClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
