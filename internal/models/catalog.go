package models

import "github.com/shopspring/decimal"

// Supplier is a vendor able to deliver a catalog item, with its quoted terms.
type Supplier struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	AvgDeliveryTime string          `json:"avgDeliveryTime"`
	LastUpdated     string          `json:"lastUpdated"`
	Notes           string          `json:"notes"`
}

// CatalogItem is a purchasable item and the suppliers scoped to it.
type CatalogItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	UnitMeasure string     `json:"unitMeasure"`
	Suppliers   []Supplier `json:"suppliers"`
}

// Supplier finds a supplier among the ones scoped to this item.
func (i CatalogItem) Supplier(id string) (Supplier, bool) {
	for _, s := range i.Suppliers {
		if s.ID == id {
			return s, true
		}
	}
	return Supplier{}, false
}

// SupplierByName finds a scoped supplier by display name.
func (i CatalogItem) SupplierByName(name string) (Supplier, bool) {
	for _, s := range i.Suppliers {
		if s.Name == name {
			return s, true
		}
	}
	return Supplier{}, false
}
