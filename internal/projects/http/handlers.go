package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/projects/domain"
	"github.com/studio-atelier/site-backend/internal/slug"
)

const maxPageSize = 100

// writeError maps service errors onto status codes.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, slug.ErrEmptyName),
		errors.Is(err, slug.ErrEmptySlug),
		errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, slug.ErrSlugExhausted), errors.Is(err, domain.ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.NewLogger(c.Request.Context()).LogError(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid project id"})
		return 0, false
	}
	return id, true
}

// parseFilter reads category, featured, limit and offset from the query string.
func parseFilter(c *gin.Context) (domain.ListFilter, bool) {
	f := domain.ListFilter{
		Category:     strings.TrimSpace(c.Query("category")),
		FeaturedOnly: c.Query("featured") == "true" || c.Query("featured") == "1",
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid limit"})
			return f, false
		}
		f.Limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid offset"})
			return f, false
		}
		f.Offset = n
	}
	return f, true
}

func (h *Handler) listPublished(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}

	raw, err := h.svc.ListPublished(c.Request.Context(), f)
	if err != nil {
		writeError(c, "projects.list_published", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": raw})
}

func (h *Handler) getPublished(c *gin.Context) {
	raw, err := h.svc.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, "projects.get_published", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": raw})
}

func (h *Handler) list(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, "projects.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, "projects.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "projects.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, "projects.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, "projects.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) previewSlug(c *gin.Context) {
	var req slugPreviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	s, err := h.svc.PreviewSlug(c.Request.Context(), req.Name, req.Slug, req.ExcludeID)
	if err != nil {
		writeError(c, "projects.slug_preview", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "slug": s})
}
