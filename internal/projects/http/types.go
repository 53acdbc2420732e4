package http

import (
	"context"
	"encoding/json"

	"github.com/studio-atelier/site-backend/internal/projects/domain"
)

// Service is the project operations used by the HTTP layer.
type Service interface {
	Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id int64, in domain.ProjectInput) (*domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error)
	Delete(ctx context.Context, id int64) error
	PreviewSlug(ctx context.Context, name, candidate string, excludeID int64) (string, error)
	ListPublished(ctx context.Context, f domain.ListFilter) (json.RawMessage, error)
	GetPublishedBySlug(ctx context.Context, slug string) (json.RawMessage, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

type slugPreviewReq struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ExcludeID int64  `json:"exclude_id"`
}
