package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

const dateLayout = "2006-01-02"

// ListPurchaseRequestsQuery is the query string accepted by the stateless list endpoint.
// Multi-value sections accept repeated keys or comma separated values.
type ListPurchaseRequestsQuery struct {
	Status   []string `form:"status"`
	Type     []string `form:"type"`
	Vendor   []string `form:"vendor"`
	From     string   `form:"from"`
	To       string   `form:"to"`
	Search   string   `form:"search"`
	SortBy   string   `form:"sortBy"`
	Order    string   `form:"order"`
	Page     int      `form:"page"`
	PageSize int      `form:"pageSize"`
}

// Selection converts the query into a filter selection.
func (q ListPurchaseRequestsQuery) Selection() (models.FilterSelection, error) {
	sel := models.FilterSelection{
		Vendors: splitValues(q.Vendor),
		Search:  q.Search,
		SortBy:  models.SortKey(q.SortBy),
		Order:   models.SortOrder(q.Order),
	}
	for _, s := range splitValues(q.Status) {
		sel.Statuses = append(sel.Statuses, models.RequestStatus(s))
	}
	for _, t := range splitValues(q.Type) {
		sel.Types = append(sel.Types, models.RequestType(t))
	}
	if q.From != "" || q.To != "" {
		rng := &models.DateRange{}
		if q.From != "" {
			from, err := time.Parse(dateLayout, q.From)
			if err != nil {
				return sel, fmt.Errorf("from must be a %s date", dateLayout)
			}
			rng.From = &from
		}
		if q.To != "" {
			to, err := time.Parse(dateLayout, q.To)
			if err != nil {
				return sel, fmt.Errorf("to must be a %s date", dateLayout)
			}
			end := to.Add(24*time.Hour - time.Nanosecond)
			rng.To = &end
		}
		sel.DateRange = rng
	}
	return sel, ValidateSelection(sel)
}

// ValidateSelection rejects unknown statuses, types, sort keys and directions.
func ValidateSelection(sel models.FilterSelection) error {
	for _, s := range sel.Statuses {
		if !s.Valid() {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	for _, t := range sel.Types {
		if !t.Valid() {
			return fmt.Errorf("unknown request type %q", t)
		}
	}
	if sel.SortBy != "" && !sel.SortBy.Valid() {
		return fmt.Errorf("unknown sort key %q", sel.SortBy)
	}
	if sel.Order != "" && sel.Order != models.SortAsc && sel.Order != models.SortDesc {
		return fmt.Errorf("order must be asc or desc")
	}
	if sel.DateRange != nil && sel.DateRange.From != nil && sel.DateRange.To != nil && sel.DateRange.To.Before(*sel.DateRange.From) {
		return fmt.Errorf("date range ends before it starts")
	}
	return nil
}

// TransitionRequest carries the operator's answer to the confirmation dialog.
type TransitionRequest struct {
	Confirmed bool `json:"confirmed"`
}

// OpenViewRequest opens a list view.
type OpenViewRequest struct {
	Filters  models.FilterSelection `json:"filters"`
	PageSize int                    `json:"pageSize"`
}

// SetPageRequest moves a list view to a page.
type SetPageRequest struct {
	Page int `json:"page"`
}

// SetPageSizeRequest changes the page size of a list view.
type SetPageSizeRequest struct {
	PageSize int `json:"pageSize"`
}

// SelectItemRequest picks a catalog item for a draft row.
type SelectItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// SelectSupplierRequest picks a supplier for a draft row.
type SelectSupplierRequest struct {
	SupplierID string `json:"supplierId" binding:"required"`
}

// EditFieldRequest overwrites one draft field.
type EditFieldRequest struct {
	Value string `json:"value"`
}

func splitValues(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
