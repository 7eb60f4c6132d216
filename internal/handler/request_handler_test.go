package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/purchase-request-api/internal/middleware"
	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/service"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

type requestServiceMock struct {
	listSelection models.FilterSelection
	listPage      int
	listSize      int
	listResp      models.Page
	record        *models.PurchaseRequest
	transitionErr error
	confirmed     bool
	actor         string
}

func (m *requestServiceMock) List(ctx context.Context, selection models.FilterSelection, page, size int) (models.Page, bool, error) {
	m.listSelection = selection
	m.listPage = page
	m.listSize = size
	return m.listResp, true, nil
}

func (m *requestServiceMock) Get(ctx context.Context, id int64) (*models.PurchaseRequest, error) {
	if m.record == nil || m.record.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "purchase request not found")
	}
	return m.record, nil
}

func (m *requestServiceMock) Transition(ctx context.Context, id int64, action models.Action, confirmer service.Confirmer, actor string) (*models.PurchaseRequest, error) {
	m.actor = actor
	m.confirmed = confirmer.Confirm(ctx, "", "")
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}
	updated := *m.record
	updated.Status = models.RequestStatusCancelled
	return &updated, nil
}

type auditServiceMock struct{}

func (auditServiceMock) Trail(ctx context.Context, id int64) ([]models.AuditEntry, error) {
	return []models.AuditEntry{{RequestID: id, Action: models.AuditActionCreate}}, nil
}

func (auditServiceMock) TrackStatus(ctx context.Context, id int64) (*models.StatusTimeline, error) {
	return nil, appErrors.Clone(appErrors.ErrTransitionNotAllowed, "track-status is not allowed")
}

type exportServiceMock struct{}

func (exportServiceMock) Export(ctx context.Context, id int64, format service.ExportFormat) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "purchase-request-pr-004." + string(format), ContentType: "text/csv", Data: []byte("ID\n4\n")}, nil
}

func approvedRecord() *models.PurchaseRequest {
	return &models.PurchaseRequest{ID: 2, ItemName: "Engine Oil", Quantity: 10, Status: models.RequestStatusApproved, RequestType: models.RequestTypeNormal, UnitPrice: decimal.NewFromInt(85)}
}

func newRequestRouter(svc *requestServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRequestHandler(svc, auditServiceMock{}, exportServiceMock{}, 50)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/requests", h.List)
	r.GET("/requests/:id", h.Get)
	r.POST("/requests/:id/actions/:action", h.Transition)
	r.GET("/requests/:id/export", h.Export)
	r.GET("/requests/:id/audit-trail", h.AuditTrail)
	r.GET("/requests/:id/track-status", h.TrackStatus)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestHandlerListParsesQuery(t *testing.T) {
	svc := &requestServiceMock{listResp: models.Page{
		Items:      []models.PurchaseRequest{*approvedRecord()},
		Page:       1,
		PageSize:   50,
		TotalPages: 1,
		TotalItems: 1,
	}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests?status=approved&status=pending&sortBy=unit_price&order=desc&page=2&pageSize=500", nil)
	newRequestRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.RequestStatus{models.RequestStatusApproved, models.RequestStatusPending}, svc.listSelection.Statuses)
	assert.Equal(t, models.SortByUnitPrice, svc.listSelection.SortBy)
	assert.Equal(t, 2, svc.listPage)
	assert.Equal(t, 50, svc.listSize)

	body := decodeEnvelope(t, w)
	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	row := items[0].(map[string]interface{})
	assert.Equal(t, "PR-002", row["reference"])
	assert.Equal(t, "850", row["totalAmount"])
	assert.Equal(t, []interface{}{"view", "rollback", "cancel"}, row["allowedActions"])
	assert.Equal(t, true, body["meta"].(map[string]interface{})["cache_hit"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(50), pagination["page_size"])
	assert.Equal(t, float64(1), pagination["total_count"])
	assert.Equal(t, float64(1), pagination["total_pages"])
}

func TestRequestHandlerListRejectsUnknownSort(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests?sortBy=created", nil)
	newRequestRouter(&requestServiceMock{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerGet(t *testing.T) {
	svc := &requestServiceMock{record: approvedRecord()}
	router := newRequestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/2", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerTransitionConfirmed(t *testing.T) {
	svc := &requestServiceMock{record: approvedRecord()}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests/2/actions/cancel", bytes.NewBufferString(`{"confirmed":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "carol")
	newRequestRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.confirmed)
	assert.Equal(t, "carol", svc.actor)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "cancelled", data["requestStatus"])
}

func TestRequestHandlerTransitionNeedsConfirmation(t *testing.T) {
	prompt := models.ActionCancel.Prompt(*approvedRecord())
	svc := &requestServiceMock{record: approvedRecord(), transitionErr: &service.ConfirmationError{Prompt: prompt}}
	w := httptest.NewRecorder()
	newRequestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/requests/2/actions/cancel", nil))

	require.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.False(t, svc.confirmed)
	assert.Equal(t, defaultActor, svc.actor)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "CONFIRMATION_REQUIRED", body["error"].(map[string]interface{})["code"])
	confirmation := body["meta"].(map[string]interface{})["confirmation"].(map[string]interface{})
	assert.Equal(t, "Cancel Request", confirmation["title"])
}

func TestRequestHandlerTransitionConflict(t *testing.T) {
	svc := &requestServiceMock{record: approvedRecord(), transitionErr: appErrors.ErrTransitionNotAllowed}
	w := httptest.NewRecorder()
	newRequestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/requests/2/actions/process-refund", bytes.NewBufferString(`{"confirmed":true}`)))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRequestHandlerExportAndDetails(t *testing.T) {
	router := newRequestRouter(&requestServiceMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/4/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "purchase-request-pr-004.csv")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/4/audit-trail", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/4/track-status", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
