package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/purchase-request-api/internal/models"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

// ListView is the filter + pagination state of one open request table.
type ListView struct {
	Selection models.FilterSelection
	Page      int
	PageSize  int
	maxSize   int
}

// NewListView opens a view on page 1 with no filters.
func NewListView(pageSize, maxPageSize int) *ListView {
	v := &ListView{Page: 1, maxSize: maxPageSize}
	v.PageSize = v.clampSize(pageSize)
	return v
}

// ApplyFilters replaces the selection and resets to page 1.
func (v *ListView) ApplyFilters(selection models.FilterSelection) {
	v.Selection = selection
	v.Page = 1
}

// SetPageSize changes the window size and resets to page 1.
func (v *ListView) SetPageSize(size int) {
	v.PageSize = v.clampSize(size)
	v.Page = 1
}

// SetPage records the requested page; Render clamps it against the current view.
func (v *ListView) SetPage(page int) {
	v.Page = page
}

// Render runs the pipeline over records and stores the page actually shown.
func (v *ListView) Render(records []models.PurchaseRequest) models.Page {
	page := Paginate(ApplyFilters(records, v.Selection), v.Page, v.PageSize)
	v.Page = page.Page
	return page
}

func (v *ListView) clampSize(size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if v.maxSize > 0 && size > v.maxSize {
		size = v.maxSize
	}
	return size
}

type requestLister interface {
	List(ctx context.Context) ([]models.PurchaseRequest, error)
}

// ViewSnapshot is what a panel receives after every view event.
type ViewSnapshot struct {
	ID        string
	Selection models.FilterSelection
	Page      models.Page
}

type viewSession struct {
	mu   sync.Mutex
	view *ListView
}

// ViewService tracks open list views and re-renders them against the live store.
type ViewService struct {
	records         requestLister
	sessions        *sessionStore[*viewSession]
	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
}

// NewViewService constructs a ViewService.
func NewViewService(records requestLister, defaultPageSize, maxPageSize int, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{
		records:         records,
		sessions:        newSessionStore[*viewSession](),
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
}

// Open starts a new view with the given initial selection.
func (s *ViewService) Open(ctx context.Context, selection models.FilterSelection) (*ViewSnapshot, error) {
	view := NewListView(s.defaultPageSize, s.maxPageSize)
	view.ApplyFilters(selection)
	session := &viewSession{view: view}
	id := s.sessions.open(session)
	snap, err := s.render(ctx, id, session, nil)
	if err != nil {
		s.sessions.close(id)
		return nil, err
	}
	s.logger.Debug("list view opened", zap.String("view_id", id))
	return snap, nil
}

// Get re-renders the view without changing its state.
func (s *ViewService) Get(ctx context.Context, id string) (*ViewSnapshot, error) {
	return s.mutate(ctx, id, nil)
}

// ApplyFilters replaces the selection; the view returns to page 1.
func (s *ViewService) ApplyFilters(ctx context.Context, id string, selection models.FilterSelection) (*ViewSnapshot, error) {
	return s.mutate(ctx, id, func(v *ListView) { v.ApplyFilters(selection) })
}

// SetPage moves to page, clamped into range.
func (s *ViewService) SetPage(ctx context.Context, id string, page int) (*ViewSnapshot, error) {
	return s.mutate(ctx, id, func(v *ListView) { v.SetPage(page) })
}

// SetPageSize changes the page size; the view returns to page 1.
func (s *ViewService) SetPageSize(ctx context.Context, id string, size int) (*ViewSnapshot, error) {
	return s.mutate(ctx, id, func(v *ListView) { v.SetPageSize(size) })
}

// Close discards the view.
func (s *ViewService) Close(ctx context.Context, id string) error {
	if !s.sessions.close(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "list view not found")
	}
	return nil
}

func (s *ViewService) mutate(ctx context.Context, id string, fn func(*ListView)) (*ViewSnapshot, error) {
	session, ok := s.sessions.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "list view not found")
	}
	return s.render(ctx, id, session, fn)
}

func (s *ViewService) render(ctx context.Context, id string, session *viewSession, fn func(*ListView)) (*ViewSnapshot, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load purchase requests")
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if fn != nil {
		fn(session.view)
	}
	page := session.view.Render(records)
	return &ViewSnapshot{ID: id, Selection: session.view.Selection, Page: page}, nil
}
