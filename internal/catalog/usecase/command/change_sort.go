package command

import (
	"context"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
)

// ChangeSortCommand represents a sort key change for the view
type ChangeSortCommand struct {
	UserID    string
	Field     string
	Direction string
}

// ChangeSortHandler handles sort key changes
type ChangeSortHandler struct {
	sessions *session.Registry
}

// NewChangeSortHandler creates a new change sort handler
func NewChangeSortHandler(sessions *session.Registry) *ChangeSortHandler {
	return &ChangeSortHandler{sessions: sessions}
}

// Handle validates the key and triggers the re-fetch at the new order
func (h *ChangeSortHandler) Handle(ctx context.Context, cmd ChangeSortCommand) (domain.SortKey, error) {
	key, err := domain.ParseSortKey(cmd.Field, cmd.Direction)
	if err != nil {
		return domain.SortKey{}, err
	}

	sess := h.sessions.Get(ctx, cmd.UserID)
	if err := sess.SetSortKey(ctx, key); err != nil {
		// The previous set is retained; the key itself is active.
		return key, err
	}
	return key, nil
}
