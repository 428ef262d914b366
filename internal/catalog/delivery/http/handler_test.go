package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/internal/catalog/usecase/command"
	"github.com/stoktakip/catalog-view/internal/catalog/usecase/query"
	"github.com/stoktakip/catalog-view/pkg/auth"
)

// fakeInventory is a stateful in-memory stand-in for the inventory service,
// shared across tests. Tests isolate through distinct user ids; the handler
// is built once because its Prometheus collectors register globally.
type fakeInventory struct {
	mu        sync.Mutex
	threshold int
	favorites map[string]map[uint]bool
}

func brandRef(id uint) *uint { return &id }

func (f *fakeInventory) products() []domain.Product {
	return []domain.Product{
		{ID: 1, SerialNumber: 1, Name: "Çelik Vida", Quantity: 3, CategoryID: 10, CategoryName: "Hırdavat", BrandID: brandRef(100), BrandName: "Şahin"},
		{ID: 2, SerialNumber: 2, Name: "Somun", Quantity: 0, CategoryID: 10, CategoryName: "Hırdavat"},
		{ID: 3, SerialNumber: 3, Name: "Pul", Quantity: 50, CategoryID: 20, CategoryName: "Conta"},
	}
}

func (f *fakeInventory) FetchSortedProducts(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	products := f.products()
	for i := range products {
		products[i].IsFavorite = f.favorites[userID][products[i].ID]
	}
	domain.Sort(products, key)
	return products, nil
}

func (f *fakeInventory) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 10, Name: "Hırdavat"}, {ID: 20, Name: "Conta"}}, nil
}

func (f *fakeInventory) FetchBrands(ctx context.Context) ([]domain.Brand, error) {
	return []domain.Brand{{ID: 100, Name: "Şahin"}}, nil
}

func (f *fakeInventory) FetchCriticalThreshold(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threshold, nil
}

func (f *fakeInventory) UpdateCriticalThreshold(ctx context.Context, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threshold = value
	return nil
}

func (f *fakeInventory) ToggleFavorite(ctx context.Context, productID uint, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.favorites[userID] == nil {
		f.favorites[userID] = make(map[uint]bool)
	}
	f.favorites[userID][productID] = !f.favorites[userID][productID]
	return f.favorites[userID][productID], nil
}

var (
	setupOnce  sync.Once
	testAPI    *fakeInventory
	testRouter *mux.Router
)

func setup() (*fakeInventory, *mux.Router) {
	setupOnce.Do(func() {
		testAPI = &fakeInventory{threshold: 5, favorites: make(map[string]map[uint]bool)}

		registry := session.NewRegistry(testAPI, session.Config{
			DefaultThreshold: 0,
			NoticeVisibleFor: 20 * time.Millisecond,
			NoticeClearAfter: 40 * time.Millisecond,
		})

		handler := NewCatalogHandler(
			command.NewToggleFavoriteHandler(registry, nil),
			command.NewUpdateThresholdHandler(registry, nil),
			command.NewChangeSortHandler(registry),
			command.NewSetFiltersHandler(registry),
			query.NewGetViewHandler(registry),
			query.NewListFacetsHandler(testAPI),
			query.NewExportViewHandler(registry),
			registry,
		)

		testRouter = mux.NewRouter()
		handler.RegisterRoutes(testRouter, nil)
		handler.RegisterHealthCheck(testRouter)
	})
	return testAPI, testRouter
}

func doRequest(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	_, router := setup()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, userID, time.Hour)
	require.NoError(t, err)
	return token
}

func TestGetProducts(t *testing.T) {
	rec, resp := doRequest(t, http.MethodGet, "/api/catalog/products", tokenFor(t, "view-user"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var result query.ViewResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 5, result.Threshold)
	require.Len(t, result.Rows, 3)

	// Default order is serial number ascending; row statuses come from the
	// seeded threshold.
	assert.Equal(t, uint(1), result.Rows[0].ID)
	assert.True(t, result.Rows[0].Status.Critical)
	assert.False(t, result.Rows[0].Status.Depleted)
	assert.True(t, result.Rows[1].Status.Depleted)
	assert.False(t, result.Rows[2].Status.Critical)
}

func TestGetProductsAnonymous(t *testing.T) {
	rec, resp := doRequest(t, http.MethodGet, "/api/catalog/products", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestChangeSort(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPut, "/api/catalog/sort", tokenFor(t, "sort-user"),
		map[string]string{"field": "quantity", "direction": "desc"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, result := doRequest(t, http.MethodGet, "/api/catalog/products", tokenFor(t, "sort-user"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(result.Data)
	var view query.ViewResult
	require.NoError(t, json.Unmarshal(data, &view))

	require.Len(t, view.Rows, 3)
	assert.Equal(t, uint(3), view.Rows[0].ID, "quantity descending puts the fullest row first")
}

func TestChangeSortRejectsUnknownField(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPut, "/api/catalog/sort", "",
		map[string]string{"field": "price", "direction": "asc"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestSetFilters(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPut, "/api/catalog/filters", tokenFor(t, "filter-user"),
		map[string]interface{}{"status": "critical"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, result := doRequest(t, http.MethodGet, "/api/catalog/products", tokenFor(t, "filter-user"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(result.Data)
	var view query.ViewResult
	require.NoError(t, json.Unmarshal(data, &view))

	assert.Equal(t, 2, view.Total, "threshold 5 leaves two critical rows")
}

func TestSetFiltersRejectsUnknownStatus(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPut, "/api/catalog/filters", "",
		map[string]interface{}{"status": "broken"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestToggleFavoriteRequiresAuth(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPost, "/api/catalog/products/1/favorite", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
}

func TestToggleFavorite(t *testing.T) {
	token := tokenFor(t, "fav-user")

	// Seed the session first so the product is in the view.
	rec, _ := doRequest(t, http.MethodGet, "/api/catalog/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doRequest(t, http.MethodPost, "/api/catalog/products/1/favorite", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var state session.Toggle
	require.NoError(t, json.Unmarshal(data, &state))

	assert.Equal(t, session.PhaseConfirmed, state.Phase)
	assert.True(t, state.Want)
}

func TestToggleFavoriteInvalidID(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPost, "/api/catalog/products/abc/favorite", tokenFor(t, "fav-user-2"), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestThresholdRoundTrip(t *testing.T) {
	token := tokenFor(t, "threshold-user")

	rec, resp := doRequest(t, http.MethodPut, "/api/catalog/threshold", token,
		map[string]int{"value": 8})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, resp = doRequest(t, http.MethodGet, "/api/catalog/threshold", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(resp.Data)
	var body map[string]int
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, 8, body["value"])
}

func TestThresholdRejectsNegative(t *testing.T) {
	rec, resp := doRequest(t, http.MethodPut, "/api/catalog/threshold", tokenFor(t, "threshold-user-2"),
		map[string]int{"value": -1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestGetFacets(t *testing.T) {
	rec, resp := doRequest(t, http.MethodGet, "/api/catalog/facets", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var facets query.FacetsResult
	require.NoError(t, json.Unmarshal(data, &facets))

	assert.Len(t, facets.Categories, 2)
	assert.Len(t, facets.Brands, 1)
}

func TestExportEndpoints(t *testing.T) {
	token := tokenFor(t, "export-user")

	rec, _ := doRequest(t, http.MethodGet, "/api/catalog/export/xlsx", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec, _ = doRequest(t, http.MethodGet, "/api/catalog/export/pdf", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestGetNotices(t *testing.T) {
	token := tokenFor(t, "notice-user")

	rec, _ := doRequest(t, http.MethodPut, "/api/catalog/threshold", token, map[string]int{"value": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doRequest(t, http.MethodGet, "/api/catalog/notices", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, _ := json.Marshal(resp.Data)
	var notices []session.Notice
	require.NoError(t, json.Unmarshal(data, &notices))
	require.NotEmpty(t, notices)
	assert.Equal(t, session.NoticeSuccess, notices[0].Level)
}

func TestHealthCheck(t *testing.T) {
	rec, resp := doRequest(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}
