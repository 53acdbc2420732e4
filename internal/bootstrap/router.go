package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpapi "github.com/studio-atelier/site-backend/internal/api/http"
	"github.com/studio-atelier/site-backend/internal/api/http/middleware"
	authmw "github.com/studio-atelier/site-backend/internal/auth/middleware"
	contenthttp "github.com/studio-atelier/site-backend/internal/content/http"
	enquiryhttp "github.com/studio-atelier/site-backend/internal/enquiries/http"
	projecthttp "github.com/studio-atelier/site-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	AdminAPIKey    string
	TrustedProxies []string
	ContactPerMin  int
	DB             *sql.DB
	Redis          *redis.Client
	Services       *Services
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	// gin trusts every proxy by default, which lets clients pick their own
	// ClientIP for rate limiting.
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("trusted_proxies", dep.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  dep.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", authmw.APIKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	projects := projecthttp.New(dep.Services.Projects)
	content := contenthttp.New(dep.Services.Content)
	contact := enquiryhttp.New(dep.Services.Enquiries)

	projects.RegisterPublic(api.Group("/projects"))
	content.RegisterPublic(api)
	contact.Register(api, middleware.RateLimitByIP(middleware.NewRateLimiter(dep.ContactPerMin)))

	admin := api.Group("/admin")
	admin.Use(authmw.APIKeyMiddleware(dep.AdminAPIKey))
	projects.RegisterAdmin(admin.Group("/projects"))
	content.RegisterAdmin(admin)

	return r
}
