package service

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

// DefaultPageSize is used whenever a caller asks for a non-positive page size.
const DefaultPageSize = 10

// ApplyFilters runs the filter and sort stages over records and returns a new slice; records is
// never modified. Filtering keeps insertion order. When a sort key is chosen the sort is stable,
// so equal keys keep their relative input order in both directions.
func ApplyFilters(records []models.PurchaseRequest, selection models.FilterSelection) []models.PurchaseRequest {
	sel := selection.Normalized()
	statuses := toSet(sel.Statuses)
	types := toSet(sel.Types)
	vendors := toSet(sel.Vendors)
	search := strings.ToLower(strings.TrimSpace(sel.Search))

	view := make([]models.PurchaseRequest, 0, len(records))
	for _, r := range records {
		if !member(statuses, r.Status) || !member(types, r.RequestType) || !member(vendors, r.Vendor) {
			continue
		}
		if !sel.DateRange.Contains(r.RequestedAt) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		view = append(view, r)
	}

	if !sel.Sorted() {
		return view
	}
	cmp := comparator(sel.SortBy)
	if sel.Order == models.SortDesc {
		asc := cmp
		cmp = func(a, b models.PurchaseRequest) int { return asc(b, a) }
	}
	slices.SortStableFunc(view, cmp)
	return view
}

// Paginate slices view into a window. TotalPages is ceil(len/size); when the view is non-empty
// the page is clamped into [1, TotalPages] so the window is never silently empty.
func Paginate(view []models.PurchaseRequest, page, size int) models.Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(view)
	totalPages := (total + size - 1) / size
	switch {
	case page < 1 || total == 0:
		page = 1
	case page > totalPages:
		page = totalPages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	items := make([]models.PurchaseRequest, 0, end-start)
	if start < end {
		items = append(items, view[start:end]...)
	}
	return models.Page{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
	}
}

func comparator(key models.SortKey) func(a, b models.PurchaseRequest) int {
	// Collators keep scratch buffers, so each sort gets its own.
	col := collate.New(language.English)
	switch key {
	case models.SortByQuantity:
		return func(a, b models.PurchaseRequest) int { return a.Quantity - b.Quantity }
	case models.SortByVendor:
		return func(a, b models.PurchaseRequest) int { return col.CompareString(a.Vendor, b.Vendor) }
	case models.SortByUnitPrice:
		return func(a, b models.PurchaseRequest) int { return a.UnitPrice.Cmp(b.UnitPrice) }
	default:
		return func(a, b models.PurchaseRequest) int { return col.CompareString(a.ItemName, b.ItemName) }
	}
}

func matchesSearch(r models.PurchaseRequest, needle string) bool {
	for _, field := range []string{r.ItemName, r.Vendor, r.Purpose} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func toSet[T comparable](values []T) map[T]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// member treats an empty set as "no constraint".
func member[T comparable](set map[T]struct{}, v T) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[v]
	return ok
}
