package export

import (
	"time"

	"github.com/stoktakip/catalog-view/internal/catalog/domain"
)

// Exports project the currently visible (filtered and sorted) rows, never
// the unfiltered collection. Both encodings share the same column set and
// embed a generation timestamp in their filename so repeated exports never
// collide.

const (
	placeholder    = "-"
	dateLayout     = "02.01.2006"
	filenameLayout = "20060102_150405"
)

var headers = []string{"ID", "Name", "Brand", "Category", "Quantity", "Created"}

// Row is one exported table row
type Row struct {
	ID       uint
	Name     string
	Brand    string
	Category string
	Quantity int
	Created  string
}

// FromProducts maps visible products onto export rows, substituting a
// placeholder for missing brand or category names
func FromProducts(products []domain.Product) []Row {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, Row{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    orPlaceholder(p.BrandName),
			Category: orPlaceholder(p.CategoryName),
			Quantity: p.Quantity,
			Created:  p.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func timestampedFilename(prefix, ext string) string {
	return prefix + "_" + time.Now().Format(filenameLayout) + "." + ext
}
