package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/repository"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

type requestStore interface {
	List(ctx context.Context) ([]models.PurchaseRequest, error)
	Get(ctx context.Context, id int64) (*models.PurchaseRequest, error)
	AddMany(ctx context.Context, records []models.PurchaseRequest) ([]models.PurchaseRequest, error)
	Update(ctx context.Context, id int64, fn func(*models.PurchaseRequest) error) (models.PurchaseRequest, models.PurchaseRequest, error)
}

type auditWriter interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
}

// Confirmer asks the operator to approve a status change.
type Confirmer interface {
	Confirm(ctx context.Context, message, title string) bool
}

// ConfirmationError is returned when the operator declined, or has not yet approved, a status change.
type ConfirmationError struct {
	Prompt models.ConfirmationPrompt
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Prompt.Title, e.Prompt.Message)
}

func (e *ConfirmationError) Unwrap() error {
	return appErrors.Clone(appErrors.ErrConfirmationRequired, e.Prompt.Message)
}

// RequestService owns every mutation of the request store: creation, edits and status changes.
type RequestService struct {
	store    requestStore
	audit    auditWriter
	cache    *CacheService
	notifier Notifier
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewRequestService constructs a RequestService. cache, notifier and metrics are optional.
func NewRequestService(store requestStore, audit auditWriter, cache *CacheService, notifier Notifier, metrics *MetricsService, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{store: store, audit: audit, cache: cache, notifier: notifier, metrics: metrics, logger: logger}
}

// List filters, sorts and paginates the live store. The boolean reports a cache hit.
func (s *RequestService) List(ctx context.Context, selection models.FilterSelection, page, size int) (models.Page, bool, error) {
	key := makeListCacheKey(selection, page, size)
	var cached models.Page
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("list cache lookup failed", zap.Error(err))
	} else if hit {
		return cached, true, nil
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return models.Page{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load purchase requests")
	}
	result := Paginate(ApplyFilters(records, selection), page, size)
	if err := s.cache.Set(ctx, key, result, 0); err != nil {
		s.logger.Warn("list cache write failed", zap.Error(err))
	}
	return result, false, nil
}

// Get returns one request.
func (s *RequestService) Get(ctx context.Context, id int64) (*models.PurchaseRequest, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return record, nil
}

// Seed loads records as they are, statuses included, and records their creation.
func (s *RequestService) Seed(ctx context.Context, records []models.PurchaseRequest) error {
	stored, err := s.store.AddMany(ctx, records)
	if err != nil {
		return err
	}
	for _, record := range stored {
		s.recordAudit(ctx, models.AuditActionCreate, "", record, nil, &record, "system")
	}
	s.logger.Info("purchase requests seeded", zap.Int("count", len(stored)))
	return nil
}

// Add turns validated drafts into pending requests in form order.
func (s *RequestService) Add(ctx context.Context, drafts []models.DraftRow, actor string) ([]models.PurchaseRequest, error) {
	if len(drafts) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one draft is required")
	}
	records := make([]models.PurchaseRequest, 0, len(drafts))
	for _, draft := range drafts {
		record := recordFromDraft(draft)
		record.Status = models.RequestStatusPending
		records = append(records, record)
	}
	stored, err := s.store.AddMany(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store purchase requests")
	}
	for i := range stored {
		s.recordAudit(ctx, models.AuditActionCreate, "", stored[i], nil, &stored[i], actor)
	}
	s.invalidate(ctx)
	s.metrics.RecordCreated(len(stored))
	s.logger.Info("purchase requests created", zap.Int("count", len(stored)), zap.String("actor", actor))
	return stored, nil
}

// Edit overwrites the editable fields of a pending request. The status never changes here.
func (s *RequestService) Edit(ctx context.Context, id int64, draft models.DraftRow, actor string) (*models.PurchaseRequest, error) {
	before, after, err := s.store.Update(ctx, id, func(r *models.PurchaseRequest) error {
		if !models.Allows(r.Status, models.ActionEdit) {
			return transitionNotAllowed(*r, models.ActionEdit)
		}
		next := recordFromDraft(draft)
		next.Status = r.Status
		*r = next
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.recordAudit(ctx, models.AuditActionEdit, models.ActionEdit, after, &before, &after, actor)
	s.invalidate(ctx)
	s.logger.Info("purchase request edited", zap.Int64("request_id", id), zap.String("actor", actor))
	return &after, nil
}

// Transition applies a status changing action once the operator confirms it. Declining leaves
// the store untouched.
func (s *RequestService) Transition(ctx context.Context, id int64, action models.Action, confirmer Confirmer, actor string) (*models.PurchaseRequest, error) {
	if !action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown action %q", action))
	}
	target, changesStatus := action.Target()
	if !changesStatus {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("action %q does not change status", action))
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.Allows(current.Status, action) {
		return nil, transitionNotAllowed(*current, action)
	}
	prompt := action.Prompt(*current)
	if confirmer == nil || !confirmer.Confirm(ctx, prompt.Message, prompt.Title) {
		return nil, &ConfirmationError{Prompt: prompt}
	}

	before, after, err := s.store.Update(ctx, id, func(r *models.PurchaseRequest) error {
		if !models.Allows(r.Status, action) {
			return transitionNotAllowed(*r, action)
		}
		r.Status = target
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.recordAudit(ctx, models.AuditActionTransition, action, after, &before, &after, actor)
	s.invalidate(ctx)
	s.metrics.RecordTransition(action)
	s.logger.Info("purchase request status changed",
		zap.Int64("request_id", id),
		zap.String("action", string(action)),
		zap.String("from", string(before.Status)),
		zap.String("to", string(after.Status)),
		zap.String("actor", actor),
	)
	if s.notifier != nil {
		title, message := action.Outcome()
		s.notifier.Success(ctx, message, title)
	}
	return &after, nil
}

func (s *RequestService) recordAudit(ctx context.Context, action string, trigger models.Action, record models.PurchaseRequest, before, after *models.PurchaseRequest, actor string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditEntry{
		RequestID: record.ID,
		Action:    action,
		Trigger:   trigger,
		ToStatus:  record.Status,
		Actor:     actor,
		OldValues: marshalRecord(before),
		NewValues: marshalRecord(after),
	}
	if before != nil {
		entry.FromStatus = before.Status
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", zap.Int64("request_id", record.ID), zap.Error(err))
	}
}

func (s *RequestService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, PurchaseRequestCachePattern); err != nil {
		s.logger.Warn("list cache invalidation failed", zap.Error(err))
	}
}

func recordFromDraft(draft models.DraftRow) models.PurchaseRequest {
	record := models.PurchaseRequest{
		ItemName:    draft.ItemName,
		Quantity:    draft.Quantity,
		UnitMeasure: draft.UnitMeasure,
		RequestType: draft.RequestType,
		Purpose:     strings.TrimSpace(draft.Purpose),
	}
	if draft.Supplier != nil {
		record.Vendor = draft.Supplier.SupplierName
		record.UnitPrice = draft.Supplier.UnitPrice
	}
	return record
}

func marshalRecord(r *models.PurchaseRequest) json.RawMessage {
	if r == nil {
		return nil
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return payload
}

func transitionNotAllowed(r models.PurchaseRequest, action models.Action) error {
	return appErrors.Clone(appErrors.ErrTransitionNotAllowed,
		fmt.Sprintf("%s is not allowed for %s (%s)", action, r.Reference(), r.Status.Label()))
}

func mapStoreError(err error) error {
	if errors.Is(err, repository.ErrRequestNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "purchase request not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "purchase request store failed")
}

func makeListCacheKey(selection models.FilterSelection, page, size int) string {
	sel := selection.Normalized()
	var builder strings.Builder
	builder.WriteString("purchase_requests:list")
	writePart := func(name string, values ...string) {
		builder.WriteByte(':')
		builder.WriteString(name)
		builder.WriteByte('=')
		for i, v := range values {
			if i > 0 {
				builder.WriteByte(',')
			}
			builder.WriteString(strings.NewReplacer(":", "|", ",", "|").Replace(v))
		}
	}
	writePart("status", stringsOf(sel.Statuses)...)
	writePart("type", stringsOf(sel.Types)...)
	writePart("vendor", sel.Vendors...)
	if sel.DateRange != nil {
		var from, to string
		if sel.DateRange.From != nil {
			from = strconv.FormatInt(sel.DateRange.From.Unix(), 10)
		}
		if sel.DateRange.To != nil {
			to = strconv.FormatInt(sel.DateRange.To.Unix(), 10)
		}
		writePart("date", from, to)
	}
	writePart("q", strings.ToLower(strings.TrimSpace(sel.Search)))
	writePart("sort", string(sel.SortBy), string(sel.Order))
	writePart("page", strconv.Itoa(page), strconv.Itoa(size))
	return builder.String()
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
