package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/repository"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

type draftFixture struct {
	*requestFixture
	drafts *DraftService
}

func newDraftFixture(t *testing.T, cfg DraftConfig) *draftFixture {
	t.Helper()
	f := newRequestFixture(t)
	drafts := NewDraftService(repository.NewCatalogRepository(nil), f.svc, f.notifier, f.metrics, nil, cfg, nil)
	return &draftFixture{requestFixture: f, drafts: drafts}
}

func fillDraft(t *testing.T, s *DraftService, id string, row int, itemID, supplierID string) {
	t.Helper()
	ctx := context.Background()
	_, err := s.SelectItem(ctx, id, row, itemID)
	require.NoError(t, err)
	_, err = s.SelectSupplier(ctx, id, row, supplierID)
	require.NoError(t, err)
	_, err = s.EditField(ctx, id, row, models.DraftFieldQuantity, "3")
	require.NoError(t, err)
	_, err = s.EditField(ctx, id, row, models.DraftFieldRequestType, "normal")
	require.NoError(t, err)
	_, err = s.EditField(ctx, id, row, models.DraftFieldPurpose, "Depot stock")
	require.NoError(t, err)
}

func TestDraftServiceSubmitCreatesRequests(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{})
	ctx := context.Background()

	snap, err := f.drafts.OpenAdd(ctx)
	require.NoError(t, err)
	assert.False(t, snap.CanRemove)
	_, err = f.drafts.AddRow(ctx, snap.ID)
	require.NoError(t, err)
	fillDraft(t, f.drafts, snap.ID, 0, "3", "5")
	fillDraft(t, f.drafts, snap.ID, 1, "6", "7")

	result, err := f.drafts.Submit(ctx, snap.ID, "alice")
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	assert.Equal(t, "LubeWorks", result.Created[0].Vendor)
	assert.Equal(t, "TireMax Corp.", result.Created[1].Vendor)
	assert.Equal(t, 7, f.store.Count())
	assert.Len(t, f.notifier.successes, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.submissions.WithLabelValues(SubmissionCreated)))

	_, err = f.drafts.Get(ctx, snap.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDraftServiceSubmitInvalidCreatesNothing(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{})
	ctx := context.Background()

	snap, err := f.drafts.OpenAdd(ctx)
	require.NoError(t, err)
	fillDraft(t, f.drafts, snap.ID, 0, "3", "4")
	_, err = f.drafts.EditField(ctx, snap.ID, 0, models.DraftFieldQuantity, "0")
	require.NoError(t, err)

	_, err = f.drafts.Submit(ctx, snap.ID, "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	var validationErr *DraftValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, map[int]models.FieldErrors{0: {models.DraftFieldQuantity: "Quantity must be greater than 0"}}, validationErr.Rows)
	assert.Equal(t, 5, f.store.Count())

	snap, err = f.drafts.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quantity must be greater than 0", snap.Entries[0].Errors[models.DraftFieldQuantity])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.submissions.WithLabelValues(SubmissionInvalid)))
}

func TestDraftServiceSimulatedFailureKeepsDraft(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{Failure: func() error { return appErrors.ErrSimulatedFailure }})
	ctx := context.Background()

	snap, err := f.drafts.OpenAdd(ctx)
	require.NoError(t, err)
	fillDraft(t, f.drafts, snap.ID, 0, "1", "2")

	_, err = f.drafts.Submit(ctx, snap.ID, "alice")
	assert.True(t, errors.Is(err, appErrors.ErrSimulatedFailure))
	assert.Equal(t, 5, f.store.Count())
	assert.Equal(t, []string{"Save Failed: Error saving purchase requests. Please try again."}, f.notifier.errors)

	again, err := f.drafts.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.False(t, again.Busy)
	assert.Equal(t, "Brake Disc", again.Entries[0].Draft.ItemName)
}

func TestDraftServiceRejectsSecondSubmitWhileBusy(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{SubmitDelay: 200 * time.Millisecond})
	ctx := context.Background()

	snap, err := f.drafts.OpenAdd(ctx)
	require.NoError(t, err)
	fillDraft(t, f.drafts, snap.ID, 0, "4", "6")

	done := make(chan error, 1)
	go func() {
		_, err := f.drafts.Submit(ctx, snap.ID, "alice")
		done <- err
	}()
	require.Eventually(t, func() bool {
		current, err := f.drafts.Get(ctx, snap.ID)
		return err == nil && current.Busy
	}, time.Second, 5*time.Millisecond)

	_, err = f.drafts.Submit(ctx, snap.ID, "alice")
	assert.True(t, errors.Is(err, appErrors.ErrBusy))
	_, err = f.drafts.AddRow(ctx, snap.ID)
	assert.True(t, errors.Is(err, appErrors.ErrBusy))

	require.NoError(t, <-done)
	assert.Equal(t, 6, f.store.Count())
}

func TestDraftServiceEditFlow(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{})
	ctx := context.Background()

	snap, err := f.drafts.OpenEdit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, EditorModeEdit, snap.Mode)
	require.Len(t, snap.Entries, 1)
	seeded := snap.Entries[0].Draft
	assert.Equal(t, "1", seeded.ItemID)
	assert.Equal(t, "1", seeded.SupplierID)
	require.NotNil(t, seeded.Supplier)
	assert.Equal(t, "AutoParts Inc.", seeded.Supplier.SupplierName)

	_, err = f.drafts.AddRow(ctx, snap.ID)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.drafts.EditField(ctx, snap.ID, 0, models.DraftFieldQuantity, "7")
	require.NoError(t, err)
	result, err := f.drafts.Submit(ctx, snap.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, result.Updated)
	assert.Equal(t, 7, result.Updated.Quantity)
	assert.Equal(t, models.RequestStatusPending, result.Updated.Status)
	assert.Equal(t, 5, f.store.Count())
}

func TestDraftServiceEditOnlyForPending(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{})
	_, err := f.drafts.OpenEdit(context.Background(), 2)
	assert.True(t, errors.Is(err, appErrors.ErrTransitionNotAllowed))

	_, err = f.drafts.OpenEdit(context.Background(), 77)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDraftServiceItemChangeResetsSupplier(t *testing.T) {
	f := newDraftFixture(t, DraftConfig{})
	ctx := context.Background()

	snap, err := f.drafts.OpenAdd(ctx)
	require.NoError(t, err)
	_, err = f.drafts.SelectItem(ctx, snap.ID, 0, "3")
	require.NoError(t, err)
	_, err = f.drafts.SelectSupplier(ctx, snap.ID, 0, "4")
	require.NoError(t, err)

	snap, err = f.drafts.SelectItem(ctx, snap.ID, 0, "6")
	require.NoError(t, err)
	assert.Empty(t, snap.Entries[0].Draft.SupplierID)
	assert.Nil(t, snap.Entries[0].Draft.Supplier)
	assert.Equal(t, "pcs", snap.Entries[0].Draft.UnitMeasure)

	require.NoError(t, f.drafts.Close(ctx, snap.ID))
	assert.True(t, errors.Is(f.drafts.Close(ctx, snap.ID), appErrors.ErrNotFound))
}
