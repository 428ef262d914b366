package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortField enumerates the product attributes the view can be ordered by
type SortField string

const (
	SortBySerialNumber SortField = "serial_number"
	SortByName         SortField = "name"
	SortByQuantity     SortField = "quantity"
	SortByCategory     SortField = "category"
	SortByBrand        SortField = "brand"
	SortByCreatedAt    SortField = "created_at"
)

// SortDirection is the order applied to a sort field
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortKey is one of the twelve (field, direction) pairs. Exactly one is
// active per view session.
type SortKey struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortKey is the order every view session starts with
func DefaultSortKey() SortKey {
	return SortKey{Field: SortBySerialNumber, Direction: SortAscending}
}

// ParseSortKey validates a (field, direction) pair coming off the wire
func ParseSortKey(field, direction string) (SortKey, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	switch f {
	case SortBySerialNumber, SortByName, SortByQuantity, SortByCategory, SortByBrand, SortByCreatedAt:
	default:
		return SortKey{}, fmt.Errorf("unknown sort field: %q", field)
	}

	d := SortDirection(strings.ToLower(strings.TrimSpace(direction)))
	if d == "" {
		d = SortAscending
	}
	if d != SortAscending && d != SortDescending {
		return SortKey{}, fmt.Errorf("unknown sort direction: %q", direction)
	}

	return SortKey{Field: f, Direction: d}, nil
}

// Sort orders products in place by the given key. Name, category and brand
// comparisons are case-insensitive; ties keep their relative input order.
func Sort(products []Product, key SortKey) {
	less := lessFunc(key.Field)
	sort.SliceStable(products, func(i, j int) bool {
		if key.Direction == SortDescending {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func lessFunc(field SortField) func(a, b Product) bool {
	switch field {
	case SortByName:
		return func(a, b Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByQuantity:
		return func(a, b Product) bool { return a.Quantity < b.Quantity }
	case SortByCategory:
		return func(a, b Product) bool {
			return strings.ToLower(a.CategoryName) < strings.ToLower(b.CategoryName)
		}
	case SortByBrand:
		return func(a, b Product) bool {
			return strings.ToLower(a.BrandName) < strings.ToLower(b.BrandName)
		}
	case SortByCreatedAt:
		return func(a, b Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b Product) bool { return a.SerialNumber < b.SerialNumber }
	}
}
