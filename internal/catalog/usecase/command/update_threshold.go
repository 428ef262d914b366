package command

import (
	"context"
	"fmt"

	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/kafka"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

// UpdateThresholdCommand represents a critical threshold edit
type UpdateThresholdCommand struct {
	UserID string
	Value  int
}

// UpdateThresholdHandler handles threshold update commands
type UpdateThresholdHandler struct {
	sessions *session.Registry
	events   *kafka.Publisher
}

// NewUpdateThresholdHandler creates a new update threshold handler
func NewUpdateThresholdHandler(sessions *session.Registry, events *kafka.Publisher) *UpdateThresholdHandler {
	return &UpdateThresholdHandler{sessions: sessions, events: events}
}

// Handle applies the edit locally and propagates it to the inventory
// service. The classifier tolerates any threshold, so validation happens
// here, at the edge that accepts input.
func (h *UpdateThresholdHandler) Handle(ctx context.Context, cmd UpdateThresholdCommand) error {
	if cmd.Value < 0 {
		return fmt.Errorf("critical threshold must be non-negative, got %d", cmd.Value)
	}

	sess := h.sessions.Get(ctx, cmd.UserID)

	if err := sess.SetThreshold(ctx, cmd.Value); err != nil {
		return err
	}

	if err := h.events.PublishThresholdChanged(ctx, kafka.ThresholdChangedEvent{
		Value:  cmd.Value,
		UserID: cmd.UserID,
	}); err != nil {
		logger.Warn(ctx).Err(err).Int("value", cmd.Value).Msg("Failed to publish threshold change event")
	}

	return nil
}
