package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StatusFilter restricts the view to one stock/favorite state
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCritical  StatusFilter = "critical"
	StatusDepleted  StatusFilter = "depleted"
	StatusFavorites StatusFilter = "favorites"
)

// ParseStatusFilter validates a status filter coming off the wire. An empty
// value means no restriction.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusCritical:
		return StatusCritical, nil
	case StatusDepleted:
		return StatusDepleted, nil
	case StatusFavorites:
		return StatusFavorites, nil
	default:
		return "", fmt.Errorf("unknown status filter: %q", s)
	}
}

// IDSet is a facet selection. It decodes tolerantly: clients send identifiers
// as JSON numbers or as strings holding numbers, and both forms select the
// same facet.
type IDSet map[uint]struct{}

// NewIDSet builds a set from explicit identifiers
func NewIDSet(ids ...uint) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports membership
func (s IDSet) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// UnmarshalJSON accepts a JSON array of numbers and/or numeric strings
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	set := make(IDSet, len(items))
	for _, item := range items {
		var n uint64
		if err := json.Unmarshal(item, &n); err == nil {
			set[uint(n)] = struct{}{}
			continue
		}
		var str string
		if err := json.Unmarshal(item, &str); err != nil {
			return fmt.Errorf("invalid identifier %s", string(item))
		}
		n, err := strconv.ParseUint(strings.TrimSpace(str), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid identifier %q", str)
		}
		set[uint(n)] = struct{}{}
	}

	*s = set
	return nil
}

// MarshalJSON encodes the set as a sorted array of numbers
func (s IDSet) MarshalJSON() ([]byte, error) {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return json.Marshal(ids)
}

// FilterState is the transient multi-facet selection owned by a view
// session. The four predicates combine by logical AND; an empty selection
// within a facet means no constraint.
type FilterState struct {
	Status      StatusFilter `json:"status"`
	Search      string       `json:"search"`
	CategoryIDs IDSet        `json:"category_ids"`
	BrandIDs    IDSet        `json:"brand_ids"`
}

// NewFilterState returns the unconstrained filter every session starts with
func NewFilterState() FilterState {
	return FilterState{Status: StatusAll}
}

// Apply returns the products matching all four predicates, preserving input
// order. Sorting is the coordinator's responsibility, applied upstream. An
// empty result is valid.
func (f FilterState) Apply(products []Product, threshold int) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p, threshold) {
			result = append(result, p)
		}
	}
	return result
}

// Matches reports whether a single product passes all four predicates
func (f FilterState) Matches(p Product, threshold int) bool {
	return f.matchesStatus(p, threshold) &&
		f.matchesSearch(p) &&
		f.matchesCategory(p) &&
		f.matchesBrand(p)
}

func (f FilterState) matchesStatus(p Product, threshold int) bool {
	switch f.Status {
	case StatusCritical:
		return Classify(p.Quantity, threshold).Critical
	case StatusDepleted:
		return Classify(p.Quantity, threshold).Depleted
	case StatusFavorites:
		return p.IsFavorite
	default:
		return true
	}
}

// The search matches the product name only. Description, brand and category
// are intentionally not searched.
func (f FilterState) matchesSearch(p Product) bool {
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search))
}

func (f FilterState) matchesCategory(p Product) bool {
	if len(f.CategoryIDs) == 0 {
		return true
	}
	return f.CategoryIDs.Contains(p.CategoryID)
}

func (f FilterState) matchesBrand(p Product) bool {
	if len(f.BrandIDs) == 0 {
		return true
	}
	if p.BrandID == nil {
		return false
	}
	return f.BrandIDs.Contains(*p.BrandID)
}
