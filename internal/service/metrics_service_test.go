package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

func TestMetricsServiceExposesDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordCreated(3)
	m.RecordTransition(models.ActionCancel)
	m.RecordSubmission(SubmissionCreated)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/requests", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "purchase_requests_created_total 3"))
	assert.True(t, strings.Contains(body, `purchase_request_transitions_total{action="cancel"} 1`))
	assert.True(t, strings.Contains(body, `purchase_request_submissions_total{outcome="created"} 1`))

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.PurchaseRequestsCreated)
	assert.Equal(t, uint64(1), snap.Transitions)
	assert.Equal(t, uint64(1), snap.RequestsTotal)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordCreated(1)
		m.RecordTransition(models.ActionRollback)
		m.RecordCacheOperation(true, time.Millisecond)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (brokenCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceDisabledAlwaysMisses(t *testing.T) {
	repo := newCacheRepoStub()
	require.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	svc := NewCacheService(repo, nil, 0, nil, false)

	var dest int
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, svc.Enabled())
}

func TestCacheServiceRecordsHitRatio(t *testing.T) {
	m := NewMetricsService()
	svc := NewCacheService(newCacheRepoStub(), m, 0, nil, true)
	ctx := context.Background()

	var dest string
	hit, err := svc.Get(ctx, "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "present", "value", 0))
	hit, err = svc.Get(ctx, "present", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", dest)
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
}

func TestRequestServiceListSurvivesCacheOutage(t *testing.T) {
	f := newRequestFixture(t)
	svc := NewRequestService(f.store, f.audit, NewCacheService(brokenCacheRepo{}, nil, 0, nil, true), nil, nil, nil)

	page, hit, err := svc.List(context.Background(), models.FilterSelection{}, 1, 2)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []int64{1, 2}, ids(page.Items))
}
