package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

// CatalogRepository is the static item → supplier table consulted by the form editor.
type CatalogRepository struct {
	items []models.CatalogItem
}

// NewCatalogRepository builds a catalog from items; nil loads the default table.
func NewCatalogRepository(items []models.CatalogItem) *CatalogRepository {
	if items == nil {
		items = defaultCatalog()
	}
	return &CatalogRepository{items: items}
}

// Items returns every catalog item.
func (r *CatalogRepository) Items(ctx context.Context) ([]models.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.CatalogItem, len(r.items))
	copy(out, r.items)
	return out, nil
}

// Item looks an item up by id.
func (r *CatalogRepository) Item(id string) (models.CatalogItem, bool) {
	for _, item := range r.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.CatalogItem{}, false
}

// ItemByName looks an item up by display name.
func (r *CatalogRepository) ItemByName(name string) (models.CatalogItem, bool) {
	for _, item := range r.items {
		if item.Name == name {
			return item, true
		}
	}
	return models.CatalogItem{}, false
}

func defaultCatalog() []models.CatalogItem {
	price := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	autoParts := func(p string) models.Supplier {
		return models.Supplier{ID: "1", Name: "AutoParts Inc.", UnitPrice: price(p), AvgDeliveryTime: "3-5 days", LastUpdated: "2024-01-15", Notes: "Quality parts, reliable delivery"}
	}
	oilMax := func(p, notes string) models.Supplier {
		return models.Supplier{ID: "4", Name: "OilMax Supply", UnitPrice: price(p), AvgDeliveryTime: "1-3 days", LastUpdated: "2024-01-18", Notes: notes}
	}
	filterPro := func(p string) models.Supplier {
		return models.Supplier{ID: "6", Name: "FilterPro Ltd.", UnitPrice: price(p), AvgDeliveryTime: "2-3 days", LastUpdated: "2024-01-16", Notes: "OEM quality filters"}
	}
	return []models.CatalogItem{
		{ID: "1", Name: "Brake Disc", UnitMeasure: "pcs", Suppliers: []models.Supplier{
			autoParts("450.00"),
			{ID: "2", Name: "BrakeTech Corp.", UnitPrice: price("420.00"), AvgDeliveryTime: "2-4 days", LastUpdated: "2024-01-10", Notes: "Competitive pricing"},
		}},
		{ID: "2", Name: "Brake Pads", UnitMeasure: "sets", Suppliers: []models.Supplier{
			autoParts("180.00"),
			{ID: "3", Name: "SafeStop Materials", UnitPrice: price("165.00"), AvgDeliveryTime: "5-7 days", LastUpdated: "2024-01-08", Notes: "Budget-friendly option"},
		}},
		{ID: "3", Name: "Engine Oil", UnitMeasure: "liters", Suppliers: []models.Supplier{
			oilMax("85.00", "Fast delivery, bulk discounts available"),
			{ID: "5", Name: "LubeWorks", UnitPrice: price("92.00"), AvgDeliveryTime: "2-4 days", LastUpdated: "2024-01-12", Notes: "Premium quality oils"},
		}},
		{ID: "4", Name: "Air Filter", UnitMeasure: "pcs", Suppliers: []models.Supplier{
			filterPro("35.00"),
		}},
		{ID: "5", Name: "Oil Filter", UnitMeasure: "pcs", Suppliers: []models.Supplier{
			filterPro("25.00"),
			oilMax("22.00", "Compatible with most engines"),
		}},
		{ID: "6", Name: "Tire", UnitMeasure: "pcs", Suppliers: []models.Supplier{
			{ID: "7", Name: "TireMax Corp.", UnitPrice: price("320.00"), AvgDeliveryTime: "4-6 days", LastUpdated: "2024-01-11", Notes: "All-season bus tires"},
		}},
	}
}
