package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/studio-atelier/site-backend/internal/cache"
	"github.com/studio-atelier/site-backend/internal/content/schema"
	contentsvc "github.com/studio-atelier/site-backend/internal/content/service"
	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/metrics"
	"github.com/studio-atelier/site-backend/internal/projects/domain"
	"github.com/studio-atelier/site-backend/internal/slug"
)

// maxConflictRetries bounds how often a write is retried after losing a slug
// race to a concurrent writer.
const maxConflictRetries = 5

// CachePrefix namespaces every cached project payload.
const CachePrefix = "projects:"

// Repository is the persistence surface the service needs.
type Repository interface {
	slug.Checker
	Create(ctx context.Context, in domain.ProjectInput, slug string) (*domain.Project, error)
	Update(ctx context.Context, id int64, in domain.ProjectInput, slug string) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Project, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error)
	Delete(ctx context.Context, id int64) error
}

// Cache is the subset of cache.Aside used for public reads.
type Cache interface {
	Fetch(ctx context.Context, key string, load cache.Loader) (json.RawMessage, error)
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo     Repository
	resolver *slug.Resolver
	cache    Cache

	// dependents are content cache prefixes whose rows reference projects and
	// change when one is deleted (ON DELETE SET NULL).
	dependents []string
}

// NewProjectService creates a new project service. c may be nil, in which case
// public reads go straight to the repository.
func NewProjectService(repo Repository, c Cache, maxSlugAttempts int) *ProjectService {
	var dependents []string
	for _, res := range schema.ReferencedBy("projects") {
		if res.PublicPath != "" {
			dependents = append(dependents, contentsvc.ResourcePrefix(res.Name))
		}
	}
	return &ProjectService{
		repo:       repo,
		resolver:   slug.NewResolver(repo, maxSlugAttempts),
		cache:      c,
		dependents: dependents,
	}
}

func normalize(in domain.ProjectInput) (domain.ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Category = strings.TrimSpace(in.Category)
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = domain.StatusCompleted
	}
	if !domain.IsValidStatus(in.Status) {
		return in, domain.ErrInvalidStatus
	}
	if in.Gallery == nil {
		in.Gallery = []string{}
	}
	return in, nil
}

// Create stores a new project, deriving its slug from the name when none is given.
func (s *ProjectService) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	p, err := s.writeWithSlug(ctx, in, 0, func(resolved string) (*domain.Project, error) {
		return s.repo.Create(ctx, in, resolved)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logging.NewLogger(ctx).LogInfof("projects.create", "created project id=%d slug=%s", p.ID, p.Slug)
	return p, nil
}

// Update overwrites project id. An empty slug is re-derived from the name; any
// slug is re-checked for uniqueness against the other projects.
func (s *ProjectService) Update(ctx context.Context, id int64, in domain.ProjectInput) (*domain.Project, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	p, err := s.writeWithSlug(ctx, in, id, func(resolved string) (*domain.Project, error) {
		return s.repo.Update(ctx, id, in, resolved)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return p, nil
}

// writeWithSlug resolves a slug and runs write, retrying with the next free
// slug when the unique index reports a race.
func (s *ProjectService) writeWithSlug(ctx context.Context, in domain.ProjectInput, excludeID int64, write func(string) (*domain.Project, error)) (*domain.Project, error) {
	var taken []string
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		res, err := s.resolver.Resolve(ctx, slug.Request{
			Name:      in.Name,
			Slug:      in.Slug,
			ExcludeID: excludeID,
			Taken:     taken,
		})
		if err != nil {
			return nil, err
		}
		metrics.SlugSuffixAttempts.Observe(float64(res.Attempts))

		p, err := write(res.Slug)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrSlugConflict) {
			return nil, err
		}

		metrics.SlugConflictsTotal.Inc()
		logging.NewLogger(ctx).LogWarnf("projects.write", "slug %q taken concurrently, retrying", res.Slug)
		taken = append(taken, res.Slug)
	}
	return nil, fmt.Errorf("%w: gave up after %d concurrent conflicts", domain.ErrSlugConflict, maxConflictRetries)
}

// PreviewSlug returns the slug a write with these values would receive now.
func (s *ProjectService) PreviewSlug(ctx context.Context, name, candidate string, excludeID int64) (string, error) {
	res, err := s.resolver.Resolve(ctx, slug.Request{Name: name, Slug: candidate, ExcludeID: excludeID})
	if err != nil {
		return "", err
	}
	return res.Slug, nil
}

// Get returns a project by id for the admin panel.
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns projects for the admin panel, unpublished included.
func (s *ProjectService) List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error) {
	f.PublishedOnly = false
	return s.repo.List(ctx, f)
}

// Delete removes a project. Content listings referencing it are invalidated
// too since their project links are cleared.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, s.dependents...)
	return nil
}

// PublicListKey is the cache key of a published listing.
func PublicListKey(f domain.ListFilter) string {
	return CachePrefix + "list:" + strconv.FormatBool(f.FeaturedOnly) + ":" + f.Category +
		":" + strconv.Itoa(f.Limit) + ":" + strconv.Itoa(f.Offset)
}

// ListPublished returns the JSON array of published projects matching f.
// Only the unpaged, uncategorised listings are cached; any other filter reads
// through so client supplied values cannot mint cache keys.
func (s *ProjectService) ListPublished(ctx context.Context, f domain.ListFilter) (json.RawMessage, error) {
	f.PublishedOnly = true
	load := func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, f)
	}
	if !cacheableListing(f) {
		return marshalDirect(ctx, load)
	}
	return s.fetch(ctx, PublicListKey(f), load)
}

func cacheableListing(f domain.ListFilter) bool {
	return f.Category == "" && f.Limit == 0 && f.Offset == 0
}

// GetPublishedBySlug returns the JSON of the published project owning slug.
func (s *ProjectService) GetPublishedBySlug(ctx context.Context, slugValue string) (json.RawMessage, error) {
	if !slug.Valid(slugValue) {
		return nil, domain.ErrNotFound
	}
	return s.fetch(ctx, CachePrefix+"slug:"+slugValue, func(ctx context.Context) (any, error) {
		return s.repo.GetBySlug(ctx, slugValue, true)
	})
}

// CacheTargets lists the listings kept warm by the scheduler.
func (s *ProjectService) CacheTargets() []cache.Target {
	filters := []domain.ListFilter{
		{PublishedOnly: true},
		{PublishedOnly: true, FeaturedOnly: true},
	}
	out := make([]cache.Target, 0, len(filters))
	for _, f := range filters {
		f := f
		out = append(out, cache.Target{
			Key: PublicListKey(f),
			Load: func(ctx context.Context) (any, error) {
				return s.repo.List(ctx, f)
			},
		})
	}
	return out
}

func (s *ProjectService) fetch(ctx context.Context, key string, load cache.Loader) (json.RawMessage, error) {
	if s.cache == nil {
		return marshalDirect(ctx, load)
	}
	return s.cache.Fetch(ctx, key, load)
}

func marshalDirect(ctx context.Context, load cache.Loader) (json.RawMessage, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// invalidate drops the project cache plus any extra prefixes.
func (s *ProjectService) invalidate(ctx context.Context, extra ...string) {
	if s.cache == nil {
		return
	}
	for _, prefix := range append([]string{CachePrefix}, extra...) {
		if _, err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			logging.NewLogger(ctx).LogWarnf("projects.invalidate", "failed to invalidate %s: %v", prefix, err)
		}
	}
}
