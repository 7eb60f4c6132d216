package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

// ErrRequestNotFound is returned when no purchase request carries the id.
var ErrRequestNotFound = errors.New("purchase request not found")

// RequestRepository is the in-memory ordered store of purchase requests. Records keep
// insertion order and are never removed; cancellation is a status, not a delete.
type RequestRepository struct {
	mu      sync.RWMutex
	records []models.PurchaseRequest
	index   map[int64]int
	nextID  int64
	now     func() time.Time
}

// NewRequestRepository builds an empty store.
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		index:  make(map[int64]int),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source, used by tests.
func (r *RequestRepository) WithClock(now func() time.Time) *RequestRepository {
	r.now = now
	return r
}

// List returns a copy of every record in insertion order.
func (r *RequestRepository) List(ctx context.Context) ([]models.PurchaseRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.PurchaseRequest, len(r.records))
	copy(out, r.records)
	return out, nil
}

// Get returns the record with the given id.
func (r *RequestRepository) Get(ctx context.Context, id int64) (*models.PurchaseRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.index[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	record := r.records[pos]
	return &record, nil
}

// AddMany appends the records, assigning ids and timestamps, and returns the stored copies.
// Incoming ids are ignored.
func (r *RequestRepository) AddMany(ctx context.Context, records []models.PurchaseRequest) ([]models.PurchaseRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	stored := make([]models.PurchaseRequest, 0, len(records))
	for _, record := range records {
		record.ID = r.nextID
		r.nextID++
		if record.RequestedAt.IsZero() {
			record.RequestedAt = now
		}
		record.UpdatedAt = now
		r.index[record.ID] = len(r.records)
		r.records = append(r.records, record)
		stored = append(stored, record)
	}
	return stored, nil
}

// Update applies fn to a copy of the record and swaps the result in when fn succeeds.
// Only the matching record changes; id and creation time are preserved.
func (r *RequestRepository) Update(ctx context.Context, id int64, fn func(*models.PurchaseRequest) error) (before, after models.PurchaseRequest, err error) {
	if err := ctx.Err(); err != nil {
		return before, after, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.index[id]
	if !ok {
		return before, after, ErrRequestNotFound
	}
	before = r.records[pos]
	after = before
	if err := fn(&after); err != nil {
		return before, before, err
	}
	after.ID = before.ID
	after.RequestedAt = before.RequestedAt
	after.UpdatedAt = r.now()
	r.records[pos] = after
	return before, after, nil
}

// Count returns the number of stored records.
func (r *RequestRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// SeedRequests is the fixed dataset the panel loads on start.
func SeedRequests() []models.PurchaseRequest {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 9, 0, 0, 0, time.UTC) }
	return []models.PurchaseRequest{
		{ItemName: "Brake Disc", Quantity: 5, UnitMeasure: "pcs", RequestType: models.RequestTypeUrgent, Status: models.RequestStatusPending, Purpose: "Replacement for Bus 001", Vendor: "AutoParts Inc.", UnitPrice: decimal.NewFromInt(450), RequestedAt: day(15)},
		{ItemName: "Engine Oil", Quantity: 10, UnitMeasure: "liters", RequestType: models.RequestTypeNormal, Status: models.RequestStatusApproved, Purpose: "Maintenance of Bus 002", Vendor: "OilMax Supply", UnitPrice: decimal.NewFromInt(85), RequestedAt: day(18)},
		{ItemName: "Tire", Quantity: 4, UnitMeasure: "pcs", RequestType: models.RequestTypeNormal, Status: models.RequestStatusRejected, Purpose: "Transfer to Branch Office", Vendor: "TireMax Corp.", UnitPrice: decimal.NewFromInt(320), RequestedAt: day(20)},
		{ItemName: "Air Filter", Quantity: 8, UnitMeasure: "pcs", RequestType: models.RequestTypeNormal, Status: models.RequestStatusCompleted, Purpose: "Scheduled maintenance for fleet", Vendor: "FilterPro Ltd.", UnitPrice: decimal.NewFromInt(35), RequestedAt: day(22)},
		{ItemName: "Brake Pads", Quantity: 12, UnitMeasure: "sets", RequestType: models.RequestTypeUrgent, Status: models.RequestStatusPartiallyCompleted, Purpose: "Emergency repair for Bus 005", Vendor: "BrakeTech Corp.", UnitPrice: decimal.NewFromInt(180), RequestedAt: day(25)},
	}
}
