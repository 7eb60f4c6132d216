package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus captures the workflow state of a purchase request.
type RequestStatus string

const (
	RequestStatusPending            RequestStatus = "pending"
	RequestStatusApproved           RequestStatus = "approved"
	RequestStatusRejected           RequestStatus = "rejected"
	RequestStatusCompleted          RequestStatus = "completed"
	RequestStatusPartiallyCompleted RequestStatus = "partially-completed"
	RequestStatusCancelled          RequestStatus = "cancelled"
	RequestStatusRefundProcessing   RequestStatus = "refund-processing"
)

// RequestStatuses lists every status in display order.
var RequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusCompleted,
	RequestStatusPartiallyCompleted,
	RequestStatusCancelled,
	RequestStatusRefundProcessing,
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCompleted,
		RequestStatusPartiallyCompleted, RequestStatusCancelled, RequestStatusRefundProcessing:
		return true
	}
	return false
}

// Label is the human readable status shown on chips.
func (s RequestStatus) Label() string {
	switch s {
	case RequestStatusPending:
		return "Pending"
	case RequestStatusApproved:
		return "Approved"
	case RequestStatusRejected:
		return "Rejected"
	case RequestStatusCompleted:
		return "Completed"
	case RequestStatusPartiallyCompleted:
		return "Partially Completed"
	case RequestStatusCancelled:
		return "Cancelled"
	case RequestStatusRefundProcessing:
		return "Refund Processing"
	}
	return string(s)
}

// RequestType tells how urgently the purchase is needed.
type RequestType string

const (
	RequestTypeNormal RequestType = "normal"
	RequestTypeUrgent RequestType = "urgent"
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	return t == RequestTypeNormal || t == RequestTypeUrgent
}

// Label is the human readable request type.
func (t RequestType) Label() string {
	switch t {
	case RequestTypeNormal:
		return "Normal"
	case RequestTypeUrgent:
		return "Urgent"
	}
	return string(t)
}

// PurchaseRequest is a submitted request held by the request store.
type PurchaseRequest struct {
	ID          int64           `json:"id"`
	ItemName    string          `json:"itemName"`
	Quantity    int             `json:"quantity"`
	UnitMeasure string          `json:"unitMeasure"`
	RequestType RequestType     `json:"requestType"`
	Status      RequestStatus   `json:"requestStatus"`
	Purpose     string          `json:"requestPurpose"`
	Vendor      string          `json:"vendor"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	RequestedAt time.Time       `json:"requestedAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Total is quantity × unit price.
func (r PurchaseRequest) Total() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// Reference is the display identifier used in dialogs and exports.
func (r PurchaseRequest) Reference() string {
	return FormatReference(r.ID)
}

// PurchaseRequestView decorates a record with derived values for the panel.
type PurchaseRequestView struct {
	PurchaseRequest
	Reference      string          `json:"reference"`
	StatusLabel    string          `json:"statusLabel"`
	TypeLabel      string          `json:"typeLabel"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	AllowedActions []Action        `json:"allowedActions"`
}

// NewPurchaseRequestView builds the panel row for r.
func NewPurchaseRequestView(r PurchaseRequest) PurchaseRequestView {
	return PurchaseRequestView{
		PurchaseRequest: r,
		Reference:       r.Reference(),
		StatusLabel:     r.Status.Label(),
		TypeLabel:       r.RequestType.Label(),
		TotalAmount:     r.Total(),
		AllowedActions:  AllowedActions(r.Status),
	}
}
