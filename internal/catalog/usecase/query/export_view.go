package query

import (
	"context"
	"fmt"

	"github.com/stoktakip/catalog-view/internal/catalog/export"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ExportViewQuery requests an export of the currently visible rows
type ExportViewQuery struct {
	UserID string
	Format string
}

// ExportResult is an opaque binary payload plus its suggested filename
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportViewHandler handles export queries
type ExportViewHandler struct {
	sessions *session.Registry
}

// NewExportViewHandler creates a new export view handler
func NewExportViewHandler(sessions *session.Registry) *ExportViewHandler {
	return &ExportViewHandler{sessions: sessions}
}

// Handle projects the visible (filtered and sorted) rows into the requested
// encoding. Export is fire-and-forget: no retry, no undo.
func (h *ExportViewHandler) Handle(ctx context.Context, q ExportViewQuery) (ExportResult, error) {
	sess := h.sessions.Get(ctx, q.UserID)
	rows := export.FromProducts(sess.VisibleProducts())

	switch q.Format {
	case FormatXLSX:
		data, filename, err := export.Workbook(rows)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{
			Filename:    filename,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatPDF:
		data, filename, err := export.PDFTable(rows)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{
			Filename:    filename,
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return ExportResult{}, fmt.Errorf("unknown export format: %q", q.Format)
	}
}
