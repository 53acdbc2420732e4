package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only project routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.listPublished)
	rg.GET("/:slug", h.getPublished)
}

// RegisterAdmin attaches the project management routes.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.POST("/slug-preview", h.previewSlug)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}
