package query

import (
	"context"
	"sync"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

// FacetsResult holds the category and brand facets available for filtering
type FacetsResult struct {
	Categories []domain.Category `json:"categories"`
	Brands     []domain.Brand    `json:"brands"`
}

// ListFacetsHandler fetches the filter facets. Facets are global, not
// per-session; when a fetch fails the last good value is returned and the
// failure only logged. Background reads never surface an error to the user.
type ListFacetsHandler struct {
	api session.InventoryAPI

	mu         sync.Mutex
	categories []domain.Category
	brands     []domain.Brand
}

// NewListFacetsHandler creates a new list facets handler
func NewListFacetsHandler(api session.InventoryAPI) *ListFacetsHandler {
	return &ListFacetsHandler{api: api}
}

// Handle fetches both facet lists, retaining the previous value for any
// list whose fetch fails
func (h *ListFacetsHandler) Handle(ctx context.Context) FacetsResult {
	categories, err := h.api.FetchCategories(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Category fetch failed, keeping last good value")
	}
	brands, err := h.api.FetchBrands(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Brand fetch failed, keeping last good value")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if categories != nil {
		h.categories = categories
	}
	if brands != nil {
		h.brands = brands
	}

	result := FacetsResult{
		Categories: make([]domain.Category, len(h.categories)),
		Brands:     make([]domain.Brand, len(h.brands)),
	}
	copy(result.Categories, h.categories)
	copy(result.Brands, h.brands)
	return result
}
