package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/studio-atelier/site-backend/internal/enquiries/domain"
	"github.com/studio-atelier/site-backend/internal/logging"
)

// Service accepts contact form submissions.
type Service interface {
	Submit(ctx context.Context, sub domain.Submission, ip string) (*domain.Enquiry, error)
}

// Handler bundles the dependencies for the contact endpoint.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the contact route; extra middleware (rate limiting) runs
// before the handler.
func (h *Handler) Register(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/contact", append(mw, h.submit)...)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func bindingErrors(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "email":
			msg = "must be an email address"
		case "min":
			msg = "must be at least " + fe.Param() + " characters"
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		}
		out = append(out, fieldError{Field: jsonName(fe.Field()), Message: msg})
	}
	return out
}

// jsonName maps a Submission field name onto its snake_case JSON key.
func jsonName(field string) string {
	if field == "ProjectType" {
		return "project_type"
	}
	return strings.ToLower(field)
}

func (h *Handler) submit(c *gin.Context) {
	var req domain.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := bindingErrors(err); fields != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "validation failed", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	e, err := h.svc.Submit(c.Request.Context(), req, c.ClientIP())
	switch {
	case errors.Is(err, domain.ErrSpam):
		// look like success to the sender
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		return
	case errors.Is(err, domain.ErrTooMany):
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": err.Error()})
		return
	case err != nil:
		logging.NewLogger(c.Request.Context()).LogError("enquiries.submit", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "could not send your message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": e.ID})
}
