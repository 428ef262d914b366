package session

import (
	"context"
	"sync"
	"time"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

// InventoryAPI is the contract the view engine consumes from the remote
// inventory service
type InventoryAPI interface {
	FetchSortedProducts(ctx context.Context, key domain.SortKey, userID string) ([]domain.Product, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
	FetchBrands(ctx context.Context) ([]domain.Brand, error)
	FetchCriticalThreshold(ctx context.Context) (int, error)
	UpdateCriticalThreshold(ctx context.Context, value int) error
	ToggleFavorite(ctx context.Context, productID uint, userID string) (bool, error)
}

// Config holds the session tunables
type Config struct {
	DefaultThreshold int
	NoticeVisibleFor time.Duration
	NoticeClearAfter time.Duration
}

// DefaultConfig uses the notice timings the UI expects: notices fade after
// three seconds and are cleared shortly after the fade completes.
func DefaultConfig() Config {
	return Config{
		DefaultThreshold: 0,
		NoticeVisibleFor: 3 * time.Second,
		NoticeClearAfter: 4500 * time.Millisecond,
	}
}

// Session owns all mutable view state for one user: the cached product set,
// the active sort key, the filter state, the critical threshold and the
// transient notices. Every write goes through the session mutex, so readers
// never observe a partially replaced product set.
type Session struct {
	userID string
	api    InventoryAPI
	cfg    Config

	startOnce sync.Once

	mu        sync.Mutex
	products  []domain.Product
	sortKey   domain.SortKey
	filter    domain.FilterState
	threshold int
	fetchSeq  uint64
	toggles   map[uint]*Toggle
	notices   []*Notice
}

// NewSession creates a view session for the given user. An empty userID is
// valid and yields a session whose favorite flags are uniformly false.
func NewSession(userID string, api InventoryAPI, cfg Config) *Session {
	return &Session{
		userID:    userID,
		api:       api,
		cfg:       cfg,
		sortKey:   domain.DefaultSortKey(),
		filter:    domain.NewFilterState(),
		threshold: cfg.DefaultThreshold,
		toggles:   make(map[uint]*Toggle),
	}
}

// Start seeds the session from the remote service: the critical threshold
// and the first product fetch. Neither failure is fatal: the session stays
// interactive with its defaults and an empty set.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		value, err := s.api.FetchCriticalThreshold(ctx)
		if err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to seed critical threshold, keeping default")
		} else {
			s.mu.Lock()
			s.threshold = value
			s.mu.Unlock()
		}

		if err := s.Refresh(ctx); err != nil {
			logger.Warn(ctx).Err(err).Str("user_id", s.userID).Msg("Initial product fetch failed")
		}
	})
}

// SetSortKey activates a sort key and re-fetches the collection in that
// order. On failure the previous set is retained; there is no automatic
// retry.
func (s *Session) SetSortKey(ctx context.Context, key domain.SortKey) error {
	s.mu.Lock()
	s.sortKey = key
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	return s.fetchAndApply(ctx, key, seq)
}

// Refresh re-fetches the collection at the current sort key
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	key := s.sortKey
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	return s.fetchAndApply(ctx, key, seq)
}

func (s *Session) nextSeqLocked() uint64 {
	s.fetchSeq++
	return s.fetchSeq
}

func (s *Session) fetchAndApply(ctx context.Context, key domain.SortKey, seq uint64) error {
	products, err := s.api.FetchSortedProducts(ctx, key, s.userID)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("user_id", s.userID).
			Str("sort_field", string(key.Field)).
			Msg("Product fetch failed, keeping previous set")
		s.pushNotice(NoticeError, "Product list could not be refreshed.")
		return err
	}

	if !s.applyProducts(seq, key, products) {
		logger.Debug(ctx).
			Uint64("seq", seq).
			Str("sort_field", string(key.Field)).
			Msg("Discarded stale product fetch response")
	}
	return nil
}

// applyProducts replaces the cached set wholesale. A response whose sequence
// is older than the latest issued fetch is discarded, so a slow stale fetch
// can never overwrite a fresher one. Products with an in-flight optimistic
// toggle keep their optimistic flag until the toggle resolves.
func (s *Session) applyProducts(seq uint64, key domain.SortKey, products []domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.fetchSeq {
		return false
	}

	domain.Sort(products, key)

	for i := range products {
		if t, ok := s.toggles[products[i].ID]; ok && t.Phase == PhaseOptimistic {
			products[i].IsFavorite = t.Want
		}
	}

	s.products = products
	return true
}

// Products returns a copy of the cached authoritative set
func (s *Session) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// VisibleProducts returns the filtered projection of the cached set,
// preserving the active sort order
func (s *Session) VisibleProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter.Apply(s.products, s.threshold)
}

// SortKey returns the active sort key
func (s *Session) SortKey() domain.SortKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortKey
}

// Filter returns the active filter state
func (s *Session) Filter() domain.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter replaces the filter state. Filtering is purely local; no fetch
// is issued.
func (s *Session) SetFilter(f domain.FilterState) {
	if f.Status == "" {
		f.Status = domain.StatusAll
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Threshold returns the active critical threshold
func (s *Session) Threshold() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threshold
}

// SetThreshold applies a threshold edit locally and propagates it to the
// inventory service (last-writer-wins). When the remote write fails the
// local value is kept as-is and the failure surfaces as a transient notice.
func (s *Session) SetThreshold(ctx context.Context, value int) error {
	s.mu.Lock()
	s.threshold = value
	s.mu.Unlock()

	if err := s.api.UpdateCriticalThreshold(ctx, value); err != nil {
		logger.Error(ctx).
			Err(err).
			Int("value", value).
			Msg("Threshold update failed, keeping local value")
		s.pushNotice(NoticeError, "Critical threshold could not be saved.")
		return err
	}

	s.pushNotice(NoticeSuccess, "Critical threshold updated.")
	return nil
}

func (s *Session) indexOfLocked(productID uint) int {
	for i := range s.products {
		if s.products[i].ID == productID {
			return i
		}
	}
	return -1
}
