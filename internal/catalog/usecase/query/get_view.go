package query

import (
	"context"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
)

const defaultPageSize = 25

// GetViewQuery requests the filtered, sorted, classified row projection
type GetViewQuery struct {
	UserID   string
	Page     int
	PageSize int
}

// ViewRow is one rendered row: the product plus its stock classification
type ViewRow struct {
	domain.Product
	Status domain.StockStatus `json:"status"`
}

// ViewResult is the display projection. Rows is never nil: an empty view
// renders as an explicit zero-row state, not an error.
type ViewResult struct {
	Rows      []ViewRow          `json:"rows"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
	SortKey   domain.SortKey     `json:"sort_key"`
	Filter    domain.FilterState `json:"filter"`
	Threshold int                `json:"threshold"`
}

// GetViewHandler handles view projection queries
type GetViewHandler struct {
	sessions *session.Registry
}

// NewGetViewHandler creates a new get view handler
func NewGetViewHandler(sessions *session.Registry) *GetViewHandler {
	return &GetViewHandler{sessions: sessions}
}

// Handle computes the projection from the session's cached set. Pagination
// is display-only windowing over the filtered rows.
func (h *GetViewHandler) Handle(ctx context.Context, q GetViewQuery) (ViewResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}

	sess := h.sessions.Get(ctx, q.UserID)
	threshold := sess.Threshold()
	visible := sess.VisibleProducts()

	total := len(visible)
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	rows := make([]ViewRow, 0, end-start)
	for _, p := range visible[start:end] {
		rows = append(rows, ViewRow{
			Product: p,
			Status:  domain.Classify(p.Quantity, threshold),
		})
	}

	return ViewResult{
		Rows:      rows,
		Total:     total,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortKey:   sess.SortKey(),
		Filter:    sess.Filter(),
		Threshold: threshold,
	}, nil
}
