package http

import (
	"github.com/gin-gonic/gin"

	"github.com/studio-atelier/site-backend/internal/content/schema"
)

// RegisterPublic attaches one read-only listing route per public resource.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	for _, res := range schema.Public() {
		rg.GET("/"+res.PublicPath, h.publicList(res.PublicPath))
	}
}

// RegisterAdmin attaches the schema and generic resource routes.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/schema", h.listSchemas)
	rg.GET("/schema/:resource", h.getSchema)

	res := rg.Group("/resources/:resource")
	res.GET("", h.list)
	res.POST("", h.create)
	res.GET("/:id", h.get)
	res.PUT("/:id", h.update)
	res.PATCH("/:id", h.patch)
	res.DELETE("/:id", h.delete)
}
