package command

import (
	"context"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
)

// SetFiltersCommand replaces the view's filter state
type SetFiltersCommand struct {
	UserID string
	Status string
	Search string
	// Facet selections; empty means no constraint.
	CategoryIDs domain.IDSet
	BrandIDs    domain.IDSet
}

// SetFiltersHandler handles filter state changes
type SetFiltersHandler struct {
	sessions *session.Registry
}

// NewSetFiltersHandler creates a new set filters handler
func NewSetFiltersHandler(sessions *session.Registry) *SetFiltersHandler {
	return &SetFiltersHandler{sessions: sessions}
}

// Handle validates and applies the filter state. Filtering is local to the
// session; no fetch is issued.
func (h *SetFiltersHandler) Handle(ctx context.Context, cmd SetFiltersCommand) (domain.FilterState, error) {
	status, err := domain.ParseStatusFilter(cmd.Status)
	if err != nil {
		return domain.FilterState{}, err
	}

	filter := domain.FilterState{
		Status:      status,
		Search:      cmd.Search,
		CategoryIDs: cmd.CategoryIDs,
		BrandIDs:    cmd.BrandIDs,
	}

	sess := h.sessions.Get(ctx, cmd.UserID)
	sess.SetFilter(filter)
	return filter, nil
}
