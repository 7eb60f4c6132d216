package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/purchase-request-api/internal/handler"
)

type routeHandlers struct {
	requests *handler.RequestHandler
	views    *handler.ViewHandler
	drafts   *handler.DraftHandler
	catalog  *handler.CatalogHandler
	metrics  *handler.MetricsHandler
}

func registerRoutes(r gin.IRouter, prefix string, h routeHandlers) {
	api := r.Group(prefix)

	requests := api.Group("/requests")
	requests.GET("", h.requests.List)
	requests.GET("/:id", h.requests.Get)
	requests.POST("/:id/actions/:action", h.requests.Transition)
	requests.GET("/:id/export", h.requests.Export)
	requests.GET("/:id/audit-trail", h.requests.AuditTrail)
	requests.GET("/:id/track-status", h.requests.TrackStatus)
	requests.POST("/:id/drafts", h.drafts.OpenEdit)

	views := api.Group("/views")
	views.POST("", h.views.Open)
	views.GET("/:id", h.views.Get)
	views.PUT("/:id/filters", h.views.ApplyFilters)
	views.PUT("/:id/page", h.views.SetPage)
	views.PUT("/:id/page-size", h.views.SetPageSize)
	views.DELETE("/:id", h.views.Close)

	drafts := api.Group("/drafts")
	drafts.POST("", h.drafts.OpenAdd)
	drafts.GET("/:id", h.drafts.Get)
	drafts.DELETE("/:id", h.drafts.Close)
	drafts.POST("/:id/rows", h.drafts.AddRow)
	drafts.DELETE("/:id/rows/:row", h.drafts.RemoveRow)
	drafts.PUT("/:id/rows/:row/item", h.drafts.SelectItem)
	drafts.PUT("/:id/rows/:row/supplier", h.drafts.SelectSupplier)
	drafts.PUT("/:id/rows/:row/fields/:field", h.drafts.EditField)
	drafts.POST("/:id/validate", h.drafts.Validate)
	drafts.POST("/:id/submit", h.drafts.Submit)

	api.GET("/catalog/items", h.catalog.Items)
	api.GET("/metrics/summary", h.metrics.Summary)
}
