package models

import "github.com/shopspring/decimal"

// DraftField names an editable draft column.
type DraftField string

const (
	DraftFieldItem        DraftField = "item_name"
	DraftFieldQuantity    DraftField = "quantity"
	DraftFieldUnitMeasure DraftField = "unit_measure"
	DraftFieldRequestType DraftField = "request_type"
	DraftFieldPurpose     DraftField = "purpose"
	DraftFieldStatus      DraftField = "status"
	DraftFieldSupplier    DraftField = "supplier"
)

// SupplierSnapshot copies the supplier terms at the moment of selection.
type SupplierSnapshot struct {
	SupplierName    string          `json:"supplierName"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	AvgDeliveryTime string          `json:"avgDeliveryTime"`
	LastUpdated     string          `json:"lastUpdated"`
	Notes           string          `json:"notes"`
}

// DraftRow is an unsubmitted request in the add/edit form. Supplier data stays nil until
// a supplier is chosen for the selected item.
type DraftRow struct {
	ItemID      string            `json:"itemId"`
	ItemName    string            `json:"itemName" validate:"required"`
	Quantity    int               `json:"quantity" validate:"gt=0"`
	UnitMeasure string            `json:"unitMeasure" validate:"required"`
	RequestType RequestType       `json:"requestType" validate:"required,oneof=normal urgent"`
	Purpose     string            `json:"requestPurpose" validate:"notblank"`
	Status      RequestStatus     `json:"requestStatus" validate:"required"`
	SupplierID  string            `json:"supplier" validate:"required"`
	Supplier    *SupplierSnapshot `json:"supplierDetails"`
}

// NewDraftRow returns the empty row a form opens with.
func NewDraftRow() DraftRow {
	return DraftRow{Status: RequestStatusPending}
}

// FieldErrors maps a draft field to its message.
type FieldErrors map[DraftField]string

// DraftEntry pairs a draft with its validation errors so the two can never drift apart.
type DraftEntry struct {
	Draft  DraftRow    `json:"draft"`
	Errors FieldErrors `json:"errors"`
}
