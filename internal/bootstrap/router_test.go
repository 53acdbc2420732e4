package bootstrap

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studio-atelier/site-backend/config"
)

func testRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	return testRouterWith(t, func(*RouterDeps) {})
}

func testRouterWith(t *testing.T, adjust func(*RouterDeps)) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Cache:   config.CacheConfig{TTL: time.Minute},
		Slug:    config.SlugConfig{MaxAttempts: 10},
		Contact: config.ContactConfig{RatePerMinute: 5},
	}

	deps := RouterDeps{
		ServiceName:    "studio",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:5173"},
		AdminAPIKey:    "secret",
		ContactPerMin:  5,
		Services:       NewServices(cfg, db, nil),
	}
	adjust(&deps)
	return BuildRouter(deps), mock
}

// postContact sends count contact submissions from remoteAddr, each with a
// different X-Forwarded-For, and returns the status codes.
func postContact(r *gin.Engine, remoteAddr string, count int) []int {
	codes := make([]int, 0, count)
	for i := 0; i < count; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	return codes
}

func TestBuildRouter_ContactLimitIgnoresForwardedFor(t *testing.T) {
	r, _ := testRouter(t)

	codes := postContact(r, "203.0.113.7:1234", 8)
	for _, code := range codes[:5] {
		assert.NotEqual(t, http.StatusTooManyRequests, code)
	}
	for _, code := range codes[5:] {
		assert.Equal(t, http.StatusTooManyRequests, code)
	}
}

func TestBuildRouter_ContactLimitHonoursTrustedProxy(t *testing.T) {
	r, _ := testRouterWith(t, func(d *RouterDeps) {
		d.TrustedProxies = []string{"203.0.113.0/24"}
	})

	for _, code := range postContact(r, "203.0.113.7:1234", 8) {
		assert.NotEqual(t, http.StatusTooManyRequests, code)
	}
}

func TestBuildRouter_InvalidTrustedProxiesTrustNone(t *testing.T) {
	r, _ := testRouterWith(t, func(d *RouterDeps) {
		d.TrustedProxies = []string{"not-an-ip"}
	})

	codes := postContact(r, "203.0.113.7:1234", 6)
	assert.Equal(t, http.StatusTooManyRequests, codes[5])
}

func TestBuildRouter_AdminRequiresKey(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/api/v1/admin/projects", "/api/v1/admin/schema", "/api/v1/admin/resources/awards"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/schema", nil)
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBuildRouter_PublicListing(t *testing.T) {
	r, mock := testRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "timeline_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "timeline_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/timeline", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestBuildRouter_HealthAndMetrics(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/health", "/metrics"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
