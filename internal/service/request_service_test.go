package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/repository"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

type notifierStub struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *notifierStub) Success(ctx context.Context, message, title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, title+": "+message)
}

func (n *notifierStub) Error(ctx context.Context, message, title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, title+": "+message)
}

type confirmerStub struct {
	answer  bool
	message string
	title   string
}

func (c *confirmerStub) Confirm(ctx context.Context, message, title string) bool {
	c.message = message
	c.title = title
	return c.answer
}

type cacheRepoStub struct {
	mu          sync.Mutex
	values      map[string][]byte
	invalidated []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: make(map[string][]byte)}
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, pattern)
	s.values = make(map[string][]byte)
	return nil
}

type requestFixture struct {
	svc      *RequestService
	store    *repository.RequestRepository
	audit    *repository.AuditRepository
	cache    *cacheRepoStub
	notifier *notifierStub
	metrics  *MetricsService
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	f := &requestFixture{
		store:    repository.NewRequestRepository(),
		audit:    repository.NewAuditRepository(),
		cache:    newCacheRepoStub(),
		notifier: &notifierStub{},
		metrics:  NewMetricsService(),
	}
	cache := NewCacheService(f.cache, f.metrics, time.Minute, nil, true)
	f.svc = NewRequestService(f.store, f.audit, cache, f.notifier, f.metrics, nil)
	require.NoError(t, f.svc.Seed(context.Background(), repository.SeedRequests()))
	return f
}

func validDraft() models.DraftRow {
	draft := models.NewDraftRow()
	draft.ItemID = "5"
	draft.ItemName = "Oil Filter"
	draft.Quantity = 6
	draft.UnitMeasure = "pcs"
	draft.RequestType = models.RequestTypeUrgent
	draft.Purpose = "  Bus 007 service "
	draft.SupplierID = "6"
	draft.Supplier = &models.SupplierSnapshot{SupplierName: "FilterPro Ltd.", UnitPrice: decimal.NewFromInt(25)}
	return draft
}

func TestRequestServiceListUsesCache(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	sel := models.FilterSelection{Statuses: []models.RequestStatus{models.RequestStatusPending, models.RequestStatusRejected}}

	page, hit, err := f.svc.List(ctx, sel, 1, 10)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []int64{1, 3}, ids(page.Items))

	page, hit, err = f.svc.List(ctx, sel, 1, 10)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int64{1, 3}, ids(page.Items))
	assert.Equal(t, uint64(1), f.metrics.Snapshot().CacheHits)
}

func TestRequestServiceGetNotFound(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.svc.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRequestServiceAddCreatesPendingRecords(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	draft := validDraft()
	draft.Status = models.RequestStatusCompleted
	created, err := f.svc.Add(ctx, []models.DraftRow{draft, validDraft()}, "alice")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(6), created[0].ID)
	assert.Equal(t, int64(7), created[1].ID)
	for _, record := range created {
		assert.Equal(t, models.RequestStatusPending, record.Status)
		assert.Equal(t, "FilterPro Ltd.", record.Vendor)
		assert.Equal(t, "Bus 007 service", record.Purpose)
		assert.True(t, decimal.NewFromInt(150).Equal(record.Total()))
	}

	entries, err := f.audit.ListByRequest(ctx, 6)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionCreate, entries[0].Action)
	assert.Equal(t, "alice", entries[0].Actor)
	assert.Contains(t, f.cache.invalidated, PurchaseRequestCachePattern)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.created))
}

func TestRequestServiceAddRejectsEmpty(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.svc.Add(context.Background(), nil, "alice")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 5, f.store.Count())
}

func TestRequestServiceEditKeepsStatus(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	draft := validDraft()
	draft.Status = models.RequestStatusApproved
	updated, err := f.svc.Edit(ctx, 1, draft, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, updated.Status)
	assert.Equal(t, "Oil Filter", updated.ItemName)
	assert.Equal(t, int64(1), updated.ID)

	entries, err := f.audit.ListByRequest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditActionEdit, entries[1].Action)
	assert.NotEmpty(t, entries[1].OldValues)
}

func TestRequestServiceEditRequiresPending(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.svc.Edit(context.Background(), 2, validDraft(), "bob")
	assert.True(t, errors.Is(err, appErrors.ErrTransitionNotAllowed))

	record, err := f.svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Engine Oil", record.ItemName)
}

func TestRequestServiceTransitionCancelsApproved(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	confirmer := &confirmerStub{answer: true}

	updated, err := f.svc.Transition(ctx, 2, models.ActionCancel, confirmer, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, updated.Status)
	assert.Equal(t, "Cancel Request", confirmer.title)
	assert.Contains(t, confirmer.message, "Engine Oil")

	records, err := f.store.List(ctx)
	require.NoError(t, err)
	for _, r := range records {
		if r.ID == 2 {
			assert.Equal(t, models.RequestStatusCancelled, r.Status)
			continue
		}
		original := repository.SeedRequests()[r.ID-1]
		assert.Equal(t, original.Status, r.Status)
	}

	assert.Equal(t, []models.Action{models.ActionView}, models.AllowedActions(updated.Status))
	assert.Equal(t, []string{"Request Cancelled: Purchase request has been cancelled successfully."}, f.notifier.successes)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.transitions.WithLabelValues("cancel")))

	entries, err := f.audit.ListByRequest(ctx, 2)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, models.AuditActionTransition, last.Action)
	assert.Equal(t, models.RequestStatusApproved, last.FromStatus)
	assert.Equal(t, models.RequestStatusCancelled, last.ToStatus)
}

func TestRequestServiceTransitionOnlyTouchesStatus(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	later := time.Date(2030, time.March, 1, 2, 0, 0, 0, time.UTC)
	f.store.WithClock(func() time.Time { return later })

	before, err := f.svc.Get(ctx, 2)
	require.NoError(t, err)

	after, err := f.svc.Transition(ctx, 2, models.ActionCancel, &confirmerStub{answer: true}, "carol")
	require.NoError(t, err)

	// UpdatedAt is store bookkeeping and moves with every write.
	assert.Equal(t, later, after.UpdatedAt)
	want := *before
	want.Status = models.RequestStatusCancelled
	want.UpdatedAt = after.UpdatedAt
	assert.Equal(t, want, *after)
}

func TestRequestServiceTransitionDeclinedChangesNothing(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, 3, models.ActionRollback, &confirmerStub{answer: false}, "carol")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	var confirmErr *ConfirmationError
	require.True(t, errors.As(err, &confirmErr))
	assert.Equal(t, "Rollback Request", confirmErr.Prompt.Title)

	record, err := f.svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, record.Status)
	assert.Empty(t, f.notifier.successes)
	assert.Empty(t, f.cache.invalidated)

	_, err = f.svc.Transition(ctx, 3, models.ActionRollback, nil, "carol")
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
}

func TestRequestServiceTransitionRejectsDisallowedAction(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	confirmer := &confirmerStub{answer: true}

	_, err := f.svc.Transition(ctx, 4, models.ActionCancel, confirmer, "carol")
	assert.True(t, errors.Is(err, appErrors.ErrTransitionNotAllowed))
	assert.Empty(t, confirmer.title)

	_, err = f.svc.Transition(ctx, 4, models.ActionExport, confirmer, "carol")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Transition(ctx, 4, models.Action("approve"), confirmer, "carol")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Transition(ctx, 99, models.ActionCancel, confirmer, "carol")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRequestServiceRollbackThenRefund(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	confirmer := &confirmerStub{answer: true}

	rolled, err := f.svc.Transition(ctx, 3, models.ActionRollback, confirmer, "dave")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, rolled.Status)
	assert.Contains(t, models.AllowedActions(rolled.Status), models.ActionEdit)

	refunded, err := f.svc.Transition(ctx, 5, models.ActionProcessRefund, confirmer, "dave")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRefundProcessing, refunded.Status)
	assert.Equal(t, "Process Refund", confirmer.title)
}

func TestMakeListCacheKeyDistinguishesSelections(t *testing.T) {
	a := makeListCacheKey(models.FilterSelection{Vendors: []string{"a:b"}}, 1, 10)
	b := makeListCacheKey(models.FilterSelection{Vendors: []string{"a"}}, 1, 10)
	c := makeListCacheKey(models.FilterSelection{}, 2, 10)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Contains(t, a, "purchase_requests:list")
}
