package domain

import "time"

// Product is the inventory service's product record as cached by a view
// session. The remote service owns the full lifecycle; this service only
// reads the collection and performs two narrow writes (favorite flag,
// critical threshold). ID is stable across re-fetches and is the sole key
// used to reconcile optimistic updates back into the cached set.
type Product struct {
	ID           uint      `json:"id"`
	SerialNumber int       `json:"serial_number"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Quantity     int       `json:"quantity"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	BrandID      *uint     `json:"brand_id,omitempty"`
	BrandName    string    `json:"brand_name,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	IsFavorite   bool      `json:"is_favorite"`
}

// Category is a filter facet and display lookup
type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Brand is a filter facet and display lookup
type Brand struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StockStatus is the per-row classification that drives filtering and
// visual alerting
type StockStatus struct {
	Critical bool `json:"critical"`
	Depleted bool `json:"depleted"`
}

// Classify computes the stock status of a quantity against the critical
// threshold. Depleted means the quantity is exactly zero; critical means at
// or below the threshold. A negative threshold is accepted: only depleted
// rows classify as critical then, since the threshold editor validates its
// own input.
func Classify(quantity, threshold int) StockStatus {
	depleted := quantity == 0
	return StockStatus{
		Depleted: depleted,
		Critical: quantity <= threshold || depleted,
	}
}
