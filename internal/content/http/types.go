package http

import (
	"context"
	"encoding/json"

	"github.com/studio-atelier/site-backend/internal/content/repository"
)

// Service is the content operations used by the HTTP layer.
type Service interface {
	PublicList(ctx context.Context, path string) (json.RawMessage, error)
	List(ctx context.Context, name string, q repository.ListQuery) (repository.Page, error)
	Get(ctx context.Context, name, id string) (repository.Record, error)
	Create(ctx context.Context, name string, input map[string]any) (repository.Record, error)
	Update(ctx context.Context, name, id string, input map[string]any, partial bool) (repository.Record, error)
	Delete(ctx context.Context, name, id string) error
}

// Handler bundles the dependencies for content HTTP endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}
