package bootstrap

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/studio-atelier/site-backend/config"
	"github.com/studio-atelier/site-backend/internal/cache"
	contentrepo "github.com/studio-atelier/site-backend/internal/content/repository"
	contentsvc "github.com/studio-atelier/site-backend/internal/content/service"
	enquiryrepo "github.com/studio-atelier/site-backend/internal/enquiries/repository"
	enquirysvc "github.com/studio-atelier/site-backend/internal/enquiries/service"
	projectrepo "github.com/studio-atelier/site-backend/internal/projects/repository"
	projectsvc "github.com/studio-atelier/site-backend/internal/projects/service"
	"github.com/studio-atelier/site-backend/internal/scheduler"
)

// Services holds the application services shared by the API and studioctl.
type Services struct {
	Cache     *cache.Aside
	Projects  *projectsvc.ProjectService
	Content   *contentsvc.ContentService
	Enquiries *enquirysvc.EnquiryService
}

// NewServices wires repositories, the cache and services. rdb may be nil, in
// which case nothing is cached.
func NewServices(cfg *config.Config, db *sql.DB, rdb *redis.Client) *Services {
	s := &Services{}

	var (
		projectCache projectsvc.Cache
		contentCache contentsvc.Cache
	)
	if rdb != nil {
		s.Cache = cache.NewAside(rdb, cfg.Cache.TTL)
		projectCache, contentCache = s.Cache, s.Cache
	}

	s.Projects = projectsvc.NewProjectService(projectrepo.NewProjectRepository(db), projectCache, cfg.Slug.MaxAttempts)
	s.Content = contentsvc.NewContentService(contentrepo.NewRepository(db), contentCache)
	s.Enquiries = enquirysvc.NewEnquiryService(enquiryrepo.NewEnquiryRepository(db), cfg.Contact.MaxPerHour)
	return s
}

// Warmer refreshes every public listing; nil when caching is off.
func (s *Services) Warmer() *scheduler.Warmer {
	if s.Cache == nil {
		return nil
	}
	return scheduler.NewWarmer(s.Cache, s.Projects.CacheTargets(), s.Content.CacheTargets())
}
