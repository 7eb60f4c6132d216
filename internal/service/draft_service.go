package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/purchase-request-api/internal/models"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

type catalogReader interface {
	catalogLookup
	ItemByName(name string) (models.CatalogItem, bool)
}

type requestWriter interface {
	Get(ctx context.Context, id int64) (*models.PurchaseRequest, error)
	Add(ctx context.Context, drafts []models.DraftRow, actor string) ([]models.PurchaseRequest, error)
	Edit(ctx context.Context, id int64, draft models.DraftRow, actor string) (*models.PurchaseRequest, error)
}

// DraftValidationError carries the per-row errors of a rejected submission.
type DraftValidationError struct {
	Rows map[int]models.FieldErrors
}

func (e *DraftValidationError) Error() string {
	return fmt.Sprintf("%d row(s) failed validation", len(e.Rows))
}

func (e *DraftValidationError) Unwrap() error {
	return appErrors.Clone(appErrors.ErrValidation, "please fix the highlighted fields")
}

// DraftSnapshot is the editor state returned after every draft event.
type DraftSnapshot struct {
	ID        string              `json:"id"`
	Mode      EditorMode          `json:"mode"`
	RequestID int64               `json:"requestId,omitempty"`
	Entries   []models.DraftEntry `json:"entries"`
	CanRemove bool                `json:"canRemove"`
	Busy      bool                `json:"busy"`
}

// SubmitResult reports what a successful submission wrote.
type SubmitResult struct {
	Created []models.PurchaseRequest `json:"created,omitempty"`
	Updated *models.PurchaseRequest  `json:"updated,omitempty"`
}

// DraftConfig tunes the simulated save.
type DraftConfig struct {
	SubmitDelay time.Duration
	// Failure is consulted once per submission after the delay; a non-nil error aborts it.
	Failure func() error
}

type draftSession struct {
	mu     sync.Mutex
	editor *FormEditor
	guard  *SubmitGuard
}

// DraftService keeps open add and edit forms and submits them.
type DraftService struct {
	sessions *sessionStore[*draftSession]
	catalog  catalogReader
	requests requestWriter
	notifier Notifier
	metrics  *MetricsService
	validate *validator.Validate
	cfg      DraftConfig
	logger   *zap.Logger
}

// NewDraftService constructs a DraftService.
func NewDraftService(catalog catalogReader, requests requestWriter, notifier Notifier, metrics *MetricsService, validate *validator.Validate, cfg DraftConfig, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewDraftValidator()
	}
	return &DraftService{
		sessions: newSessionStore[*draftSession](),
		catalog:  catalog,
		requests: requests,
		notifier: notifier,
		metrics:  metrics,
		validate: validate,
		cfg:      cfg,
		logger:   logger,
	}
}

// OpenAdd opens an add form with one empty row.
func (s *DraftService) OpenAdd(ctx context.Context) (*DraftSnapshot, error) {
	return s.open(NewFormEditor(s.catalog, s.validate)), nil
}

// OpenEdit opens a single-row form seeded from a pending request.
func (s *DraftService) OpenEdit(ctx context.Context, requestID int64) (*DraftSnapshot, error) {
	record, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !models.Allows(record.Status, models.ActionEdit) {
		return nil, transitionNotAllowed(*record, models.ActionEdit)
	}
	return s.open(NewEditFormEditor(requestID, s.draftFromRecord(*record), s.catalog, s.validate)), nil
}

// Get returns the current form state.
func (s *DraftService) Get(ctx context.Context, id string) (*DraftSnapshot, error) {
	return s.withEditor(id, false, nil)
}

// SelectItem picks the catalog item of a row.
func (s *DraftService) SelectItem(ctx context.Context, id string, row int, itemID string) (*DraftSnapshot, error) {
	return s.withEditor(id, true, func(e *FormEditor) error { return e.SelectItem(row, itemID) })
}

// SelectSupplier picks the supplier of a row.
func (s *DraftService) SelectSupplier(ctx context.Context, id string, row int, supplierID string) (*DraftSnapshot, error) {
	return s.withEditor(id, true, func(e *FormEditor) error { return e.SelectSupplier(row, supplierID) })
}

// EditField overwrites a plain field of a row.
func (s *DraftService) EditField(ctx context.Context, id string, row int, field models.DraftField, value string) (*DraftSnapshot, error) {
	return s.withEditor(id, true, func(e *FormEditor) error { return e.EditField(row, field, value) })
}

// AddRow appends an empty row to an add form.
func (s *DraftService) AddRow(ctx context.Context, id string) (*DraftSnapshot, error) {
	return s.withEditor(id, true, func(e *FormEditor) error { return e.AddRow() })
}

// RemoveRow drops a row.
func (s *DraftService) RemoveRow(ctx context.Context, id string, row int) (*DraftSnapshot, error) {
	return s.withEditor(id, true, func(e *FormEditor) error { return e.RemoveRow(row) })
}

// Validate recomputes every row's errors without submitting.
func (s *DraftService) Validate(ctx context.Context, id string) (*DraftSnapshot, error) {
	return s.withEditor(id, true, func(e *FormEditor) error {
		e.ValidateAll()
		return nil
	})
}

// Close discards a form.
func (s *DraftService) Close(ctx context.Context, id string) error {
	if !s.sessions.close(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "draft not found")
	}
	return nil
}

// Submit validates every row and, when all pass, runs the simulated save. Draft rows become
// pending requests in add mode or overwrite the edited request in edit mode. The form is
// discarded only after a successful save.
func (s *DraftService) Submit(ctx context.Context, id, actor string) (*SubmitResult, error) {
	session, ok := s.sessions.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found")
	}
	if err := s.checkValid(session); err != nil {
		s.metrics.RecordSubmission(SubmissionInvalid)
		return nil, err
	}

	var result *SubmitResult
	err := session.guard.Run(ctx, func(ctx context.Context) error {
		if err := s.checkValid(session); err != nil {
			return err
		}
		session.mu.Lock()
		editor := session.editor
		drafts := editor.Drafts()
		session.mu.Unlock()

		var err error
		result, err = s.write(ctx, editor, drafts, actor)
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, appErrors.ErrBusy):
		s.metrics.RecordSubmission(SubmissionRejected)
		return nil, err
	case errors.Is(err, appErrors.ErrValidation):
		s.metrics.RecordSubmission(SubmissionInvalid)
		return nil, err
	default:
		s.metrics.RecordSubmission(SubmissionFailed)
		s.logger.Warn("draft submission failed", zap.String("draft_id", id), zap.Error(err))
		if s.notifier != nil {
			s.notifier.Error(ctx, failureMessage(session.editor.Mode()), "Save Failed")
		}
		return nil, err
	}

	s.sessions.close(id)
	if result.Updated != nil {
		s.metrics.RecordSubmission(SubmissionUpdated)
		if s.notifier != nil {
			s.notifier.Success(ctx, "Purchase request has been updated successfully.", "Request Updated")
		}
	} else {
		s.metrics.RecordSubmission(SubmissionCreated)
		if s.notifier != nil {
			s.notifier.Success(ctx, fmt.Sprintf("%d purchase request(s) have been created successfully.", len(result.Created)), "Requests Created")
		}
	}
	return result, nil
}

func (s *DraftService) write(ctx context.Context, editor *FormEditor, drafts []models.DraftRow, actor string) (*SubmitResult, error) {
	if editor.Mode() == EditorModeEdit {
		updated, err := s.requests.Edit(ctx, editor.RequestID(), drafts[0], actor)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Updated: updated}, nil
	}
	created, err := s.requests.Add(ctx, drafts, actor)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Created: created}, nil
}

func (s *DraftService) checkValid(session *draftSession) error {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.editor.ValidateAll() {
		return nil
	}
	return &DraftValidationError{Rows: session.editor.RowErrors()}
}

func (s *DraftService) open(editor *FormEditor) *DraftSnapshot {
	session := &draftSession{editor: editor, guard: NewSubmitGuard(s.cfg.SubmitDelay, s.cfg.Failure)}
	id := s.sessions.open(session)
	s.logger.Debug("draft opened", zap.String("draft_id", id), zap.String("mode", string(editor.Mode())))
	session.mu.Lock()
	defer session.mu.Unlock()
	return snapshotDraft(id, session)
}

func (s *DraftService) withEditor(id string, mutate bool, fn func(*FormEditor) error) (*DraftSnapshot, error) {
	session, ok := s.sessions.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found")
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if mutate && session.guard.Busy() {
		return nil, appErrors.Clone(appErrors.ErrBusy, "draft is being saved")
	}
	if fn != nil {
		if err := fn(session.editor); err != nil {
			return nil, err
		}
	}
	return snapshotDraft(id, session), nil
}

func (s *DraftService) draftFromRecord(r models.PurchaseRequest) models.DraftRow {
	draft := models.DraftRow{
		ItemName:    r.ItemName,
		Quantity:    r.Quantity,
		UnitMeasure: r.UnitMeasure,
		RequestType: r.RequestType,
		Purpose:     r.Purpose,
		Status:      r.Status,
	}
	item, ok := s.catalog.ItemByName(r.ItemName)
	if !ok {
		return draft
	}
	draft.ItemID = item.ID
	if supplier, ok := item.SupplierByName(r.Vendor); ok {
		draft.SupplierID = supplier.ID
		draft.Supplier = snapshotOf(supplier)
		draft.Supplier.UnitPrice = r.UnitPrice
	}
	return draft
}

func snapshotDraft(id string, session *draftSession) *DraftSnapshot {
	return &DraftSnapshot{
		ID:        id,
		Mode:      session.editor.Mode(),
		RequestID: session.editor.RequestID(),
		Entries:   session.editor.Entries(),
		CanRemove: session.editor.CanRemove(),
		Busy:      session.guard.Busy(),
	}
}

func failureMessage(mode EditorMode) string {
	if mode == EditorModeEdit {
		return "Error updating purchase request. Please try again."
	}
	return "Error saving purchase requests. Please try again."
}
