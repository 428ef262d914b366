package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stoktakip/catalog-view/pkg/logger"
)

// ErrIdentityRequired is returned when a favorite toggle is attempted
// without a resolved user identity
var ErrIdentityRequired = errors.New("favorite toggle requires a user identity")

// TogglePhase tracks an optimistic favorite toggle through its lifecycle
type TogglePhase string

const (
	// PhaseOptimistic: the local flag is flipped, the server has not
	// confirmed yet
	PhaseOptimistic TogglePhase = "optimistic"
	// PhaseConfirmed: the server acknowledged and its flag value won
	PhaseConfirmed TogglePhase = "confirmed"
	// PhaseRolledBack: the server call failed and the local flip was
	// reverted
	PhaseRolledBack TogglePhase = "rolled_back"
)

// Toggle is the two-phase state of one favorite flip for one product
type Toggle struct {
	ProductID uint        `json:"product_id"`
	Want      bool        `json:"want"`
	Phase     TogglePhase `json:"phase"`
	StartedAt time.Time   `json:"started_at"`
}

// ToggleFavorite flips the favorite flag of a product optimistically, then
// confirms against the inventory service. On success the server-reported
// flag wins if it disagrees with the optimistic guess, and a reconciliation
// fetch at the current sort key follows. On failure the optimistic flip is
// reverted. A second toggle on the same product while the first is in flight
// supersedes it: the first response no longer touches the flag.
func (s *Session) ToggleFavorite(ctx context.Context, productID uint) error {
	if s.userID == "" {
		return ErrIdentityRequired
	}

	s.mu.Lock()
	idx := s.indexOfLocked(productID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("product %d is not in the current view", productID)
	}
	want := !s.products[idx].IsFavorite
	s.products[idx].IsFavorite = want
	s.toggles[productID] = &Toggle{
		ProductID: productID,
		Want:      want,
		Phase:     PhaseOptimistic,
		StartedAt: time.Now(),
	}
	s.mu.Unlock()

	confirmed, err := s.api.ToggleFavorite(ctx, productID, s.userID)
	if err != nil {
		s.mu.Lock()
		if t, ok := s.toggles[productID]; ok && t.Phase == PhaseOptimistic && t.Want == want {
			t.Phase = PhaseRolledBack
			if i := s.indexOfLocked(productID); i >= 0 {
				s.products[i].IsFavorite = !want
			}
		}
		s.mu.Unlock()

		logger.Error(ctx).
			Err(err).
			Uint("product_id", productID).
			Str("user_id", s.userID).
			Msg("Favorite toggle failed, optimistic flip reverted")
		s.pushNotice(NoticeError, "Favorite could not be updated.")
		return err
	}

	s.mu.Lock()
	t, ok := s.toggles[productID]
	superseded := !ok || t.Phase != PhaseOptimistic || t.Want != want
	if !superseded {
		t.Phase = PhaseConfirmed
		if i := s.indexOfLocked(productID); i >= 0 {
			// Server truth wins over the optimistic guess.
			s.products[i].IsFavorite = confirmed
		}
	}
	s.mu.Unlock()

	if superseded {
		logger.Debug(ctx).
			Uint("product_id", productID).
			Msg("Favorite toggle response superseded by a newer toggle")
		return nil
	}

	s.pushNotice(NoticeSuccess, "Favorite updated.")

	// Reconcile server-computed derived fields. A failure here is already
	// surfaced by the fetch path; the toggle itself succeeded.
	if err := s.Refresh(ctx); err != nil {
		logger.Warn(ctx).
			Err(err).
			Uint("product_id", productID).
			Msg("Reconciliation fetch after favorite toggle failed")
	}
	return nil
}

// ToggleState exposes the toggle state machine for a product, if any toggle
// has been attempted this session
func (s *Session) ToggleState(productID uint) (Toggle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.toggles[productID]
	if !ok {
		return Toggle{}, false
	}
	return *t, true
}
