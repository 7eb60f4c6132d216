package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/purchase-request-api/internal/dto"
	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/service"
	"github.com/noah-isme/purchase-request-api/pkg/response"
)

type viewService interface {
	Open(ctx context.Context, selection models.FilterSelection) (*service.ViewSnapshot, error)
	Get(ctx context.Context, id string) (*service.ViewSnapshot, error)
	ApplyFilters(ctx context.Context, id string, selection models.FilterSelection) (*service.ViewSnapshot, error)
	SetPage(ctx context.Context, id string, page int) (*service.ViewSnapshot, error)
	SetPageSize(ctx context.Context, id string, size int) (*service.ViewSnapshot, error)
	Close(ctx context.Context, id string) error
}

type viewResponse struct {
	ID      string                       `json:"id"`
	Filters models.FilterSelection       `json:"filters"`
	Items   []models.PurchaseRequestView `json:"items"`
}

// ViewHandler drives stateful list views: filters, page and page size survive between calls.
type ViewHandler struct {
	views viewService
}

// NewViewHandler builds a ViewHandler.
func NewViewHandler(views viewService) *ViewHandler {
	return &ViewHandler{views: views}
}

// Open godoc
// @Summary Open a list view
// @Tags Views
// @Accept json
// @Produce json
// @Param payload body dto.OpenViewRequest false "Initial filters"
// @Success 201 {object} response.Envelope
// @Router /views [post]
func (h *ViewHandler) Open(c *gin.Context) {
	var req dto.OpenViewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, invalidPayload(err, "invalid view payload"))
		return
	}
	if err := dto.ValidateSelection(req.Filters); err != nil {
		response.Error(c, invalidPayload(err, err.Error()))
		return
	}
	snap, err := h.views.Open(c.Request.Context(), req.Filters)
	if err == nil && req.PageSize > 0 {
		snap, err = h.views.SetPageSize(c.Request.Context(), snap.ID, req.PageSize)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, http.StatusCreated, snap)
}

// Get godoc
// @Summary Render a list view
// @Tags Views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /views/{id} [get]
func (h *ViewHandler) Get(c *gin.Context) {
	snap, err := h.views.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, http.StatusOK, snap)
}

// ApplyFilters godoc
// @Summary Replace the filters of a list view
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param payload body models.FilterSelection true "Filters"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/filters [put]
func (h *ViewHandler) ApplyFilters(c *gin.Context) {
	var sel models.FilterSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		response.Error(c, invalidPayload(err, "invalid filter payload"))
		return
	}
	if err := dto.ValidateSelection(sel); err != nil {
		response.Error(c, invalidPayload(err, err.Error()))
		return
	}
	snap, err := h.views.ApplyFilters(c.Request.Context(), c.Param("id"), sel)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, http.StatusOK, snap)
}

// SetPage godoc
// @Summary Move a list view to a page
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param payload body dto.SetPageRequest true "Page"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/page [put]
func (h *ViewHandler) SetPage(c *gin.Context) {
	var req dto.SetPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid page payload"))
		return
	}
	snap, err := h.views.SetPage(c.Request.Context(), c.Param("id"), req.Page)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, http.StatusOK, snap)
}

// SetPageSize godoc
// @Summary Change the page size of a list view
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param payload body dto.SetPageSizeRequest true "Page size"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/page-size [put]
func (h *ViewHandler) SetPageSize(c *gin.Context) {
	var req dto.SetPageSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid page size payload"))
		return
	}
	snap, err := h.views.SetPageSize(c.Request.Context(), c.Param("id"), req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.write(c, http.StatusOK, snap)
}

// Close godoc
// @Summary Close a list view
// @Tags Views
// @Param id path string true "View ID"
// @Success 204
// @Router /views/{id} [delete]
func (h *ViewHandler) Close(c *gin.Context) {
	if err := h.views.Close(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ViewHandler) write(c *gin.Context, status int, snap *service.ViewSnapshot) {
	pagination := snap.Page.Pagination()
	response.JSON(c, status, viewResponse{
		ID:      snap.ID,
		Filters: snap.Selection,
		Items:   toViews(snap.Page.Items),
	}, pagination)
}
