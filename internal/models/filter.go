package models

import "time"

// SortKey names the single column a list view is ordered by.
type SortKey string

const (
	SortByItemName  SortKey = "item_name"
	SortByQuantity  SortKey = "quantity"
	SortByVendor    SortKey = "vendor"
	SortByUnitPrice SortKey = "unit_price"
)

// Valid reports whether k is a supported sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortByItemName, SortByQuantity, SortByVendor, SortByUnitPrice:
		return true
	}
	return false
}

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DateRange is an inclusive window on RequestedAt. Either bound may be open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls within the window.
func (d *DateRange) Contains(t time.Time) bool {
	if d == nil {
		return true
	}
	if d.From != nil && t.Before(*d.From) {
		return false
	}
	if d.To != nil && t.After(*d.To) {
		return false
	}
	return true
}

// FilterSelection is the set of choices made in the filter dropdown. An empty multi-select
// section means no constraint from that section, never "exclude everything".
type FilterSelection struct {
	Statuses  []RequestStatus `json:"requestStatus,omitempty"`
	Types     []RequestType   `json:"requestType,omitempty"`
	Vendors   []string        `json:"vendor,omitempty"`
	DateRange *DateRange      `json:"dateRange,omitempty"`
	Search    string          `json:"search,omitempty"`
	SortBy    SortKey         `json:"sortBy,omitempty"`
	Order     SortOrder       `json:"order,omitempty"`
}

// Sorted reports whether a sort key is chosen. Without one the view keeps insertion order.
func (f FilterSelection) Sorted() bool {
	return f.SortBy.Valid()
}

// Normalized drops an unknown sort key and defaults the direction to ascending.
func (f FilterSelection) Normalized() FilterSelection {
	if !f.SortBy.Valid() {
		f.SortBy = ""
	}
	if f.Order != SortDesc {
		f.Order = SortAsc
	}
	return f
}
