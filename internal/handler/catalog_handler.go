package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/purchase-request-api/internal/models"
	"github.com/noah-isme/purchase-request-api/pkg/response"
)

type catalogReader interface {
	Items(ctx context.Context) ([]models.CatalogItem, error)
}

// CatalogHandler serves the read-only item and supplier table used to fill the form dropdowns.
type CatalogHandler struct {
	catalog catalogReader
}

// NewCatalogHandler builds a CatalogHandler.
func NewCatalogHandler(catalog catalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Items godoc
// @Summary List catalog items with their suppliers
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/items [get]
func (h *CatalogHandler) Items(c *gin.Context) {
	items, err := h.catalog.Items(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
