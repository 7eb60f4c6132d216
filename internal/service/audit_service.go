package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/purchase-request-api/internal/models"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

type requestGetter interface {
	Get(ctx context.Context, id int64) (*models.PurchaseRequest, error)
}

type auditReader interface {
	ListByRequest(ctx context.Context, requestID int64) ([]models.AuditEntry, error)
}

// AuditService serves the audit trail and track status views.
type AuditService struct {
	requests requestGetter
	audit    auditReader
	logger   *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(requests requestGetter, audit auditReader, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{requests: requests, audit: audit, logger: logger}
}

// Trail lists every recorded change of a completed request, oldest first.
func (s *AuditService) Trail(ctx context.Context, id int64) ([]models.AuditEntry, error) {
	if _, err := s.load(ctx, id, models.ActionAuditTrail); err != nil {
		return nil, err
	}
	entries, err := s.audit.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}

// TrackStatus builds the status timeline of a partially completed request.
func (s *AuditService) TrackStatus(ctx context.Context, id int64) (*models.StatusTimeline, error) {
	record, err := s.load(ctx, id, models.ActionTrackStatus)
	if err != nil {
		return nil, err
	}
	entries, err := s.audit.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
	}

	timeline := &models.StatusTimeline{
		Reference:   record.Reference(),
		Title:       record.ItemName,
		Current:     record.Status,
		Checkpoints: []models.StatusCheckpoint{},
	}
	for _, entry := range entries {
		if entry.Action == models.AuditActionEdit {
			continue
		}
		timeline.Checkpoints = append(timeline.Checkpoints, models.StatusCheckpoint{
			Status:    entry.ToStatus,
			Label:     entry.ToStatus.Label(),
			Actor:     entry.Actor,
			Note:      string(entry.Trigger),
			ReachedAt: entry.CreatedAt,
		})
	}
	last := len(timeline.Checkpoints) - 1
	if last < 0 || timeline.Checkpoints[last].Status != record.Status {
		timeline.Checkpoints = append(timeline.Checkpoints, models.StatusCheckpoint{
			Status:    record.Status,
			Label:     record.Status.Label(),
			ReachedAt: record.UpdatedAt,
		})
	}
	return timeline, nil
}

func (s *AuditService) load(ctx context.Context, id int64, action models.Action) (*models.PurchaseRequest, error) {
	record, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.Allows(record.Status, action) {
		return nil, transitionNotAllowed(*record, action)
	}
	return record, nil
}
