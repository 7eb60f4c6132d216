package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

// AuditRepository keeps audit entries in memory, oldest first.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	now     func() time.Time
}

// NewAuditRepository builds an empty audit log.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{now: func() time.Time { return time.Now().UTC() }}
}

// Append stores entry, filling id and timestamp when missing.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	r.mu.Lock()
	r.entries = append(r.entries, *entry)
	r.mu.Unlock()
	return nil
}

// ListByRequest returns the entries recorded for one request in the order they happened.
func (r *AuditRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.AuditEntry
	for _, entry := range r.entries {
		if entry.RequestID == requestID {
			out = append(out, entry)
		}
	}
	return out, nil
}
