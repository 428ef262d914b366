package command

import (
	"context"

	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/kafka"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

// ToggleFavoriteCommand represents a favorite flag flip for one product
type ToggleFavoriteCommand struct {
	UserID    string
	ProductID uint
}

// ToggleFavoriteHandler handles favorite toggle commands
type ToggleFavoriteHandler struct {
	sessions *session.Registry
	events   *kafka.Publisher
}

// NewToggleFavoriteHandler creates a new toggle favorite handler
func NewToggleFavoriteHandler(sessions *session.Registry, events *kafka.Publisher) *ToggleFavoriteHandler {
	return &ToggleFavoriteHandler{sessions: sessions, events: events}
}

// Handle executes the toggle and returns the resulting toggle state
func (h *ToggleFavoriteHandler) Handle(ctx context.Context, cmd ToggleFavoriteCommand) (session.Toggle, error) {
	sess := h.sessions.Get(ctx, cmd.UserID)

	if err := sess.ToggleFavorite(ctx, cmd.ProductID); err != nil {
		return session.Toggle{}, err
	}

	state, _ := sess.ToggleState(cmd.ProductID)

	// Audit trail only; a publish failure never fails the toggle.
	if err := h.events.PublishFavoriteToggled(ctx, kafka.FavoriteToggledEvent{
		ProductID:  cmd.ProductID,
		UserID:     cmd.UserID,
		IsFavorite: state.Want,
	}); err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", cmd.ProductID).Msg("Failed to publish favorite toggle event")
	}

	return state, nil
}
