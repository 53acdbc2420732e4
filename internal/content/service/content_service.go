package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/studio-atelier/site-backend/internal/cache"
	"github.com/studio-atelier/site-backend/internal/content/repository"
	"github.com/studio-atelier/site-backend/internal/content/schema"
	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/storage/postgres"
)

// CachePrefix namespaces cached content listings.
const CachePrefix = "content:"

var (
	// ErrNotWritable is returned for resources that are read only through the
	// generic routes.
	ErrNotWritable = errors.New("resource cannot be written here")
	ErrNotPublic   = errors.New("resource is not public")
)

// Store is the persistence surface of the content service.
type Store interface {
	List(ctx context.Context, res schema.Resource, q repository.ListQuery) (repository.Page, error)
	Get(ctx context.Context, res schema.Resource, id string) (repository.Record, error)
	Create(ctx context.Context, res schema.Resource, values map[string]any) (repository.Record, error)
	Update(ctx context.Context, res schema.Resource, id string, values map[string]any) (repository.Record, error)
	Delete(ctx context.Context, res schema.Resource, id string) error
}

// Cache is the subset of cache.Aside used for public listings.
type Cache interface {
	Fetch(ctx context.Context, key string, load cache.Loader) (json.RawMessage, error)
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
}

type ContentService struct {
	store Store
	cache Cache
}

// NewContentService creates the service; c may be nil.
func NewContentService(store Store, c Cache) *ContentService {
	return &ContentService{store: store, cache: c}
}

// ResourcePrefix is the cache prefix shared by every key of resource name.
func ResourcePrefix(name string) string {
	return CachePrefix + name + ":"
}

func publicKey(res schema.Resource) string {
	return ResourcePrefix(res.Name) + "list"
}

func (s *ContentService) generic(name string) (schema.Resource, error) {
	res, err := schema.Lookup(name)
	if err != nil {
		return res, err
	}
	if !res.Generic() {
		return res, fmt.Errorf("%w: use %s", ErrNotWritable, res.Endpoint)
	}
	return res, nil
}

func (s *ContentService) loadPublic(res schema.Resource) cache.Loader {
	return func(ctx context.Context) (any, error) {
		page, err := s.store.List(ctx, res, repository.ListQuery{PublishedOnly: true})
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	}
}

// PublicList returns the JSON array of published rows of the resource served
// under path, in the resource's default order.
func (s *ContentService) PublicList(ctx context.Context, path string) (json.RawMessage, error) {
	res, ok := lo.Find(schema.Public(), func(r schema.Resource) bool { return r.PublicPath == path })
	if !ok {
		return nil, ErrNotPublic
	}

	load := s.loadPublic(res)
	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}
	return s.cache.Fetch(ctx, publicKey(res), load)
}

// CacheTargets lists every public listing for the cache warmer.
func (s *ContentService) CacheTargets() []cache.Target {
	return lo.Map(schema.Public(), func(res schema.Resource, _ int) cache.Target {
		return cache.Target{Key: publicKey(res), Load: s.loadPublic(res)}
	})
}

// List returns an admin listing, unpublished rows included.
func (s *ContentService) List(ctx context.Context, name string, q repository.ListQuery) (repository.Page, error) {
	res, err := s.generic(name)
	if err != nil {
		return repository.Page{}, err
	}
	q.PublishedOnly = false
	return s.store.List(ctx, res, q)
}

func (s *ContentService) Get(ctx context.Context, name, id string) (repository.Record, error) {
	res, err := s.generic(name)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, res, id)
}

// Create validates input against the resource schema and stores it.
func (s *ContentService) Create(ctx context.Context, name string, input map[string]any) (repository.Record, error) {
	res, err := s.generic(name)
	if err != nil {
		return nil, err
	}
	if !res.Creatable {
		return nil, ErrNotWritable
	}

	values, err := res.Validate(input, false)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Create(ctx, res, values)
	if err != nil {
		return nil, referenceError(res, err)
	}
	s.invalidate(ctx, res)
	logging.NewLogger(ctx).LogInfof("content.create", "created %s id=%v", res.Name, rec["id"])
	return rec, nil
}

// Update validates input and writes it to row id. partial leaves absent
// fields untouched.
func (s *ContentService) Update(ctx context.Context, name, id string, input map[string]any, partial bool) (repository.Record, error) {
	res, err := s.generic(name)
	if err != nil {
		return nil, err
	}

	values, err := res.Validate(input, partial)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Update(ctx, res, id, values)
	if err != nil {
		return nil, referenceError(res, err)
	}
	s.invalidate(ctx, res)
	return rec, nil
}

func (s *ContentService) Delete(ctx context.Context, name, id string) error {
	res, err := s.generic(name)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, res, id); err != nil {
		return err
	}
	s.invalidate(ctx, res)
	return nil
}

// referenceError reports a dangling reference as a validation error on the
// reference field.
func referenceError(res schema.Resource, err error) error {
	if !postgres.IsForeignKeyViolation(err) {
		return err
	}
	refs := lo.Filter(res.Fields, func(f schema.Field, _ int) bool { return f.Type == schema.TypeReference })
	return &schema.ValidationError{Fields: lo.Map(refs, func(f schema.Field, _ int) schema.FieldError {
		return schema.FieldError{Field: f.Name, Message: "references a missing " + f.References + " record"}
	})}
}

func (s *ContentService) invalidate(ctx context.Context, res schema.Resource) {
	if s.cache == nil || res.PublicPath == "" {
		return
	}
	if _, err := s.cache.InvalidatePrefix(ctx, ResourcePrefix(res.Name)); err != nil {
		logging.NewLogger(ctx).LogWarnf("content.invalidate", "failed to invalidate %s cache: %v", res.Name, err)
	}
}
