package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/purchase-request-api/internal/dto"
	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/internal/service"
	"github.com/noah-isme/purchase-request-api/pkg/response"
)

type draftService interface {
	OpenAdd(ctx context.Context) (*service.DraftSnapshot, error)
	OpenEdit(ctx context.Context, requestID int64) (*service.DraftSnapshot, error)
	Get(ctx context.Context, id string) (*service.DraftSnapshot, error)
	SelectItem(ctx context.Context, id string, row int, itemID string) (*service.DraftSnapshot, error)
	SelectSupplier(ctx context.Context, id string, row int, supplierID string) (*service.DraftSnapshot, error)
	EditField(ctx context.Context, id string, row int, field models.DraftField, value string) (*service.DraftSnapshot, error)
	AddRow(ctx context.Context, id string) (*service.DraftSnapshot, error)
	RemoveRow(ctx context.Context, id string, row int) (*service.DraftSnapshot, error)
	Validate(ctx context.Context, id string) (*service.DraftSnapshot, error)
	Submit(ctx context.Context, id, actor string) (*service.SubmitResult, error)
	Close(ctx context.Context, id string) error
}

// DraftHandler exposes the add and edit forms.
type DraftHandler struct {
	drafts draftService
}

// NewDraftHandler builds a DraftHandler.
func NewDraftHandler(drafts draftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// OpenAdd godoc
// @Summary Open an add form
// @Tags Drafts
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /drafts [post]
func (h *DraftHandler) OpenAdd(c *gin.Context) {
	snap, err := h.drafts.OpenAdd(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snap)
}

// OpenEdit godoc
// @Summary Open an edit form for a pending request
// @Tags Drafts
// @Produce json
// @Param id path int true "Request ID"
// @Success 201 {object} response.Envelope
// @Router /requests/{id}/drafts [post]
func (h *DraftHandler) OpenEdit(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	snap, err := h.drafts.OpenEdit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snap)
}

// Get godoc
// @Summary Get form state
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	snap, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// AddRow godoc
// @Summary Append an empty row
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/rows [post]
func (h *DraftHandler) AddRow(c *gin.Context) {
	snap, err := h.drafts.AddRow(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// RemoveRow godoc
// @Summary Remove a row
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Param row path int true "Row index"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/rows/{row} [delete]
func (h *DraftHandler) RemoveRow(c *gin.Context) {
	row, err := intParam(c, "row")
	if err != nil {
		response.Error(c, err)
		return
	}
	snap, err := h.drafts.RemoveRow(c.Request.Context(), c.Param("id"), row)
	h.respond(c, snap, err)
}

// SelectItem godoc
// @Summary Pick the catalog item of a row
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param row path int true "Row index"
// @Param payload body dto.SelectItemRequest true "Item"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/rows/{row}/item [put]
func (h *DraftHandler) SelectItem(c *gin.Context) {
	row, err := intParam(c, "row")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SelectItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid item payload"))
		return
	}
	snap, err := h.drafts.SelectItem(c.Request.Context(), c.Param("id"), row, req.ItemID)
	h.respond(c, snap, err)
}

// SelectSupplier godoc
// @Summary Pick the supplier of a row
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param row path int true "Row index"
// @Param payload body dto.SelectSupplierRequest true "Supplier"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/rows/{row}/supplier [put]
func (h *DraftHandler) SelectSupplier(c *gin.Context) {
	row, err := intParam(c, "row")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SelectSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid supplier payload"))
		return
	}
	snap, err := h.drafts.SelectSupplier(c.Request.Context(), c.Param("id"), row, req.SupplierID)
	h.respond(c, snap, err)
}

// EditField godoc
// @Summary Overwrite a field of a row
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param row path int true "Row index"
// @Param field path string true "quantity, unit_measure, request_type, purpose or status"
// @Param payload body dto.EditFieldRequest true "Value"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/rows/{row}/fields/{field} [put]
func (h *DraftHandler) EditField(c *gin.Context) {
	row, err := intParam(c, "row")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EditFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid field payload"))
		return
	}
	snap, err := h.drafts.EditField(c.Request.Context(), c.Param("id"), row, models.DraftField(c.Param("field")), req.Value)
	h.respond(c, snap, err)
}

// Validate godoc
// @Summary Validate every row without saving
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/validate [post]
func (h *DraftHandler) Validate(c *gin.Context) {
	snap, err := h.drafts.Validate(c.Request.Context(), c.Param("id"))
	h.respond(c, snap, err)
}

// Submit godoc
// @Summary Save the form
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	result, err := h.drafts.Submit(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if len(result.Created) > 0 {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// Close godoc
// @Summary Discard the form
// @Tags Drafts
// @Param id path string true "Draft ID"
// @Success 204
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Close(c *gin.Context) {
	if err := h.drafts.Close(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *DraftHandler) respond(c *gin.Context, snap *service.DraftSnapshot, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap, nil)
}
