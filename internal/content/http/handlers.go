package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studio-atelier/site-backend/internal/content/repository"
	"github.com/studio-atelier/site-backend/internal/content/schema"
	"github.com/studio-atelier/site-backend/internal/content/service"
	"github.com/studio-atelier/site-backend/internal/logging"
)

const maxPageSize = 100

// reserved query keys that are never treated as column filters
var reserved = map[string]bool{"search": true, "sort": true, "order": true, "limit": true, "offset": true}

func writeError(c *gin.Context, op string, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, schema.ErrUnknownResource),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNotPublic):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, service.ErrNotWritable):
		c.JSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, repository.ErrInvalidQuery),
		errors.Is(err, repository.ErrNoFields):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.NewLogger(c.Request.Context()).LogError(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func (h *Handler) publicList(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := h.svc.PublicList(c.Request.Context(), path)
		if err != nil {
			writeError(c, "content.public_list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "items": raw})
	}
}

func (h *Handler) listSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "resources": schema.All()})
}

func (h *Handler) getSchema(c *gin.Context) {
	res, err := schema.Lookup(c.Param("resource"))
	if err != nil {
		writeError(c, "content.schema", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "resource": res})
}

// parseListQuery reads search, sort, order, limit, offset and per-field
// filters from the query string.
func parseListQuery(c *gin.Context, res schema.Resource) (repository.ListQuery, error) {
	q := repository.ListQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   c.Query("sort"),
		Desc:   strings.EqualFold(c.Query("order"), "desc"),
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: limit must be a non-negative integer", repository.ErrInvalidQuery)
		}
		q.Limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: offset must be a non-negative integer", repository.ErrInvalidQuery)
		}
		q.Offset = n
	}

	for key, values := range c.Request.URL.Query() {
		if reserved[key] || len(values) == 0 {
			continue
		}
		f, ok := res.Field(key)
		if !ok {
			return q, fmt.Errorf("%w: unknown filter %q", repository.ErrInvalidQuery, key)
		}
		v, err := f.ParseFilter(values[0])
		if err != nil {
			return q, fmt.Errorf("%w: %v", repository.ErrInvalidQuery, err)
		}
		if q.Filters == nil {
			q.Filters = map[string]any{}
		}
		q.Filters[key] = v
	}
	return q, nil
}

func (h *Handler) list(c *gin.Context) {
	name := c.Param("resource")
	res, err := schema.Lookup(name)
	if err != nil {
		writeError(c, "content.list", err)
		return
	}

	q, err := parseListQuery(c, res)
	if err != nil {
		writeError(c, "content.list", err)
		return
	}

	page, err := h.svc.List(c.Request.Context(), name, q)
	if err != nil {
		writeError(c, "content.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": page.Items, "total": page.Total})
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("resource"), c.Param("id"))
	if err != nil {
		writeError(c, "content.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": rec})
}

func bindBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return nil, false
	}
	return body, true
}

func (h *Handler) create(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), c.Param("resource"), body)
	if err != nil {
		writeError(c, "content.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": rec})
}

func (h *Handler) update(c *gin.Context) {
	h.write(c, false)
}

func (h *Handler) patch(c *gin.Context) {
	h.write(c, true)
}

func (h *Handler) write(c *gin.Context, partial bool) {
	body, ok := bindBody(c)
	if !ok {
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), c.Param("resource"), c.Param("id"), body, partial)
	if err != nil {
		writeError(c, "content.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": rec})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("resource"), c.Param("id")); err != nil {
		writeError(c, "content.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
