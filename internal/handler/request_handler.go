package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/purchase-request-api/internal/dto"
	"github.com/noah-isme/purchase-request-api/internal/middleware"
	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/service"
	"github.com/noah-isme/purchase-request-api/pkg/response"
)

type requestService interface {
	List(ctx context.Context, selection models.FilterSelection, page, size int) (models.Page, bool, error)
	Get(ctx context.Context, id int64) (*models.PurchaseRequest, error)
	Transition(ctx context.Context, id int64, action models.Action, confirmer service.Confirmer, actor string) (*models.PurchaseRequest, error)
}

type auditService interface {
	Trail(ctx context.Context, id int64) ([]models.AuditEntry, error)
	TrackStatus(ctx context.Context, id int64) (*models.StatusTimeline, error)
}

type exportService interface {
	Export(ctx context.Context, id int64, format service.ExportFormat) (*service.ExportFile, error)
}

// RequestHandler exposes the purchase request table, row actions and their detail views.
type RequestHandler struct {
	requests    requestService
	audit       auditService
	exports     exportService
	maxPageSize int
}

// NewRequestHandler builds a RequestHandler.
func NewRequestHandler(requests requestService, audit auditService, exports exportService, maxPageSize int) *RequestHandler {
	return &RequestHandler{requests: requests, audit: audit, exports: exports, maxPageSize: maxPageSize}
}

// List godoc
// @Summary List purchase requests
// @Tags PurchaseRequests
// @Produce json
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param type query []string false "Request type filter" collectionFormat(multi)
// @Param vendor query []string false "Vendor filter" collectionFormat(multi)
// @Param from query string false "Requested on or after (YYYY-MM-DD)"
// @Param to query string false "Requested on or before (YYYY-MM-DD)"
// @Param search query string false "Search item, vendor and purpose"
// @Param sortBy query string false "item_name, quantity, vendor or unit_price"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	var query dto.ListPurchaseRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err, "invalid query parameters"))
		return
	}
	selection, err := query.Selection()
	if err != nil {
		response.Error(c, invalidPayload(err, err.Error()))
		return
	}
	size := query.PageSize
	if h.maxPageSize > 0 && size > h.maxPageSize {
		size = h.maxPageSize
	}
	page, cacheHit, err := h.requests.List(c.Request.Context(), selection, query.Page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	pagination := page.Pagination()
	response.JSON(c, http.StatusOK, toViews(page.Items), pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get purchase request
// @Tags PurchaseRequests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.NewPurchaseRequestView(*record), nil)
}

// Transition godoc
// @Summary Apply a status changing action
// @Description Cancel, rollback or process-refund. Without "confirmed": true the call answers 428 with the dialog to show.
// @Tags PurchaseRequests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param action path string true "cancel, rollback or process-refund"
// @Param payload body dto.TransitionRequest false "Confirmation"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /requests/{id}/actions/{action} [post]
func (h *RequestHandler) Transition(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, invalidPayload(err, "invalid transition payload"))
		return
	}
	updated, err := h.requests.Transition(c.Request.Context(), id, models.Action(c.Param("action")), bodyConfirmer(req.Confirmed), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.NewPurchaseRequestView(*updated), nil)
}

// Export godoc
// @Summary Export a completed purchase request
// @Tags PurchaseRequests
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Request ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /requests/{id}/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), id, service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// AuditTrail godoc
// @Summary Audit trail of a completed purchase request
// @Tags PurchaseRequests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/audit-trail [get]
func (h *RequestHandler) AuditTrail(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.audit.Trail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// TrackStatus godoc
// @Summary Status timeline of a partially completed purchase request
// @Tags PurchaseRequests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/track-status [get]
func (h *RequestHandler) TrackStatus(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	timeline, err := h.audit.TrackStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeline, nil)
}

func toViews(records []models.PurchaseRequest) []models.PurchaseRequestView {
	views := make([]models.PurchaseRequestView, 0, len(records))
	for _, r := range records {
		views = append(views, models.NewPurchaseRequestView(r))
	}
	return views
}
