package models

// Pagination describes the window returned alongside list data.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Page is one window over an ordered view.
type Page struct {
	Items      []PurchaseRequest
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
}

// Pagination returns the envelope metadata for p.
func (p Page) Pagination() *Pagination {
	return &Pagination{Page: p.Page, PageSize: p.PageSize, TotalCount: p.TotalItems, TotalPages: p.TotalPages}
}
