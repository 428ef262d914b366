package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
)

// fakeInventoryAPI implements InventoryAPI with overridable function fields
type fakeInventoryAPI struct {
	fetchProducts   func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error)
	fetchCategories func(ctx context.Context) ([]domain.Category, error)
	fetchBrands     func(ctx context.Context) ([]domain.Brand, error)
	fetchThreshold  func(ctx context.Context) (int, error)
	updateThreshold func(ctx context.Context, value int) error
	toggleFavorite  func(ctx context.Context, productID uint, userID string) (bool, error)
}

func (f *fakeInventoryAPI) FetchSortedProducts(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
	if f.fetchProducts != nil {
		return f.fetchProducts(ctx, key, userID)
	}
	return nil, nil
}

func (f *fakeInventoryAPI) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	if f.fetchCategories != nil {
		return f.fetchCategories(ctx)
	}
	return nil, nil
}

func (f *fakeInventoryAPI) FetchBrands(ctx context.Context) ([]domain.Brand, error) {
	if f.fetchBrands != nil {
		return f.fetchBrands(ctx)
	}
	return nil, nil
}

func (f *fakeInventoryAPI) FetchCriticalThreshold(ctx context.Context) (int, error) {
	if f.fetchThreshold != nil {
		return f.fetchThreshold(ctx)
	}
	return 0, nil
}

func (f *fakeInventoryAPI) UpdateCriticalThreshold(ctx context.Context, value int) error {
	if f.updateThreshold != nil {
		return f.updateThreshold(ctx, value)
	}
	return nil
}

func (f *fakeInventoryAPI) ToggleFavorite(ctx context.Context, productID uint, userID string) (bool, error) {
	if f.toggleFavorite != nil {
		return f.toggleFavorite(ctx, productID, userID)
	}
	return false, nil
}

func waitFor() time.Duration { return time.Second }
func tick() time.Duration    { return 2 * time.Millisecond }

func testConfig() Config {
	return Config{
		DefaultThreshold: 0,
		NoticeVisibleFor: 20 * time.Millisecond,
		NoticeClearAfter: 40 * time.Millisecond,
	}
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, SerialNumber: 1, Name: "Vida", Quantity: 3},
		{ID: 2, SerialNumber: 2, Name: "Somun", Quantity: 0},
		{ID: 3, SerialNumber: 3, Name: "Pul", Quantity: 50},
	}
}

func TestStartSeedsThresholdAndProducts(t *testing.T) {
	api := &fakeInventoryAPI{
		fetchThreshold: func(ctx context.Context) (int, error) { return 5, nil },
		fetchProducts: func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
			return sampleProducts(), nil
		},
	}

	sess := NewSession("user-1", api, testConfig())
	sess.Start(context.Background())

	assert.Equal(t, 5, sess.Threshold())
	assert.Len(t, sess.Products(), 3)
}

func TestStartSurvivesFetchFailures(t *testing.T) {
	api := &fakeInventoryAPI{
		fetchThreshold: func(ctx context.Context) (int, error) { return 0, errors.New("down") },
		fetchProducts: func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
			return nil, errors.New("down")
		},
	}

	sess := NewSession("user-1", api, testConfig())
	sess.Start(context.Background())

	assert.Equal(t, 0, sess.Threshold())
	assert.Empty(t, sess.Products())
}

func TestStartIsIdempotent(t *testing.T) {
	var calls int
	api := &fakeInventoryAPI{
		fetchThreshold: func(ctx context.Context) (int, error) {
			calls++
			return 5, nil
		},
	}

	sess := NewSession("user-1", api, testConfig())
	sess.Start(context.Background())
	sess.Start(context.Background())

	assert.Equal(t, 1, calls)
}

func TestSetSortKeyRefetchesInNewOrder(t *testing.T) {
	var gotKey domain.SortKey
	api := &fakeInventoryAPI{
		fetchProducts: func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
			gotKey = key
			return sampleProducts(), nil
		},
	}

	sess := NewSession("user-1", api, testConfig())
	key := domain.SortKey{Field: domain.SortByQuantity, Direction: domain.SortDescending}
	require.NoError(t, sess.SetSortKey(context.Background(), key))

	assert.Equal(t, key, gotKey)
	assert.Equal(t, key, sess.SortKey())

	// Local re-sort guarantees the cached order matches the key even if the
	// service ignored the parameters.
	products := sess.Products()
	assert.Equal(t, uint(3), products[0].ID)
	assert.Equal(t, uint(1), products[1].ID)
	assert.Equal(t, uint(2), products[2].ID)
}

func TestSetSortKeyFailureRetainsPreviousSet(t *testing.T) {
	failing := false
	api := &fakeInventoryAPI{
		fetchProducts: func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
			if failing {
				return nil, errors.New("service down")
			}
			return sampleProducts(), nil
		},
	}

	sess := NewSession("user-1", api, testConfig())
	require.NoError(t, sess.Refresh(context.Background()))

	failing = true
	key := domain.SortKey{Field: domain.SortByName, Direction: domain.SortAscending}
	err := sess.SetSortKey(context.Background(), key)

	require.Error(t, err)
	assert.Len(t, sess.Products(), 3, "previous set must be retained")
	assert.Equal(t, key, sess.SortKey(), "the new key stays active")

	notices := sess.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Level)
}

func TestStaleFetchResponseIsDiscarded(t *testing.T) {
	firstIssued := make(chan struct{})
	releaseFirst := make(chan struct{})

	var mu sync.Mutex
	calls := 0

	api := &fakeInventoryAPI{
		fetchProducts: func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
			mu.Lock()
			calls++
			call := calls
			mu.Unlock()

			if call == 1 {
				close(firstIssued)
				<-releaseFirst
				// Slow response carrying the old order.
				return []domain.Product{{ID: 1, Name: "old", SerialNumber: 1}}, nil
			}
			return []domain.Product{{ID: 2, Name: "new", SerialNumber: 2}}, nil
		},
	}

	sess := NewSession("user-1", api, testConfig())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.Refresh(context.Background())
	}()

	<-firstIssued

	// Second fetch is issued and completes while the first hangs.
	require.NoError(t, sess.Refresh(context.Background()))

	close(releaseFirst)
	wg.Wait()

	products := sess.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "new", products[0].Name, "the stale response must not overwrite the fresher one")
}

func TestVisibleProductsAppliesFilter(t *testing.T) {
	api := &fakeInventoryAPI{
		fetchProducts: func(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error) {
			return sampleProducts(), nil
		},
		fetchThreshold: func(ctx context.Context) (int, error) { return 5, nil },
	}

	sess := NewSession("user-1", api, testConfig())
	sess.Start(context.Background())

	sess.SetFilter(domain.FilterState{Status: domain.StatusCritical})

	visible := sess.VisibleProducts()
	require.Len(t, visible, 2)
	assert.Equal(t, uint(1), visible[0].ID)
	assert.Equal(t, uint(2), visible[1].ID)

	assert.Len(t, sess.Products(), 3, "filtering never drops cached rows")
}

func TestSetFilterEmptyStatusDefaultsToAll(t *testing.T) {
	sess := NewSession("user-1", &fakeInventoryAPI{}, testConfig())

	sess.SetFilter(domain.FilterState{Search: "vida"})

	assert.Equal(t, domain.StatusAll, sess.Filter().Status)
}

func TestSetThresholdPropagatesAndNotifies(t *testing.T) {
	var gotValue int
	api := &fakeInventoryAPI{
		updateThreshold: func(ctx context.Context, value int) error {
			gotValue = value
			return nil
		},
	}

	sess := NewSession("user-1", api, testConfig())
	require.NoError(t, sess.SetThreshold(context.Background(), 7))

	assert.Equal(t, 7, sess.Threshold())
	assert.Equal(t, 7, gotValue)

	notices := sess.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSuccess, notices[0].Level)
}

func TestSetThresholdFailureKeepsLocalValue(t *testing.T) {
	api := &fakeInventoryAPI{
		updateThreshold: func(ctx context.Context, value int) error {
			return errors.New("service down")
		},
	}

	sess := NewSession("user-1", api, testConfig())
	err := sess.SetThreshold(context.Background(), 7)

	require.Error(t, err)
	assert.Equal(t, 7, sess.Threshold(), "local value is kept on propagation failure")

	notices := sess.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Level)
}

func TestNoticesFadeAndClear(t *testing.T) {
	api := &fakeInventoryAPI{
		updateThreshold: func(ctx context.Context, value int) error { return nil },
	}

	sess := NewSession("user-1", api, testConfig())
	require.NoError(t, sess.SetThreshold(context.Background(), 3))

	notices := sess.Notices()
	require.Len(t, notices, 1)
	assert.True(t, notices[0].Visible)

	assert.Eventually(t, func() bool {
		n := sess.Notices()
		return len(n) == 1 && !n[0].Visible
	}, time.Second, 5*time.Millisecond, "notice should fade but stay retained")

	assert.Eventually(t, func() bool {
		return len(sess.Notices()) == 0
	}, time.Second, 5*time.Millisecond, "notice should clear after the fade")
}
