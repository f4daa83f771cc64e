package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/internal/service"
	"github.com/noah-isme/blog-platform-api/pkg/config"
)

type deviceServiceMock struct{}

func (deviceServiceMock) List(context.Context, string) ([]models.DeviceView, error) {
	return []models.DeviceView{}, nil
}
func (deviceServiceMock) DeleteOthers(context.Context, string) error { return nil }
func (deviceServiceMock) Delete(context.Context, string, string) error { return nil }

type userServiceMock struct{}

func (userServiceMock) List(_ context.Context, f models.UserFilter) (*models.Page[models.UserView], error) {
	return models.NewPage([]models.UserView{}, f.ListQuery, 0), nil
}
func (userServiceMock) Create(context.Context, models.CreateUserRequest) (*models.UserView, error) {
	return &models.UserView{ID: "u1"}, nil
}
func (userServiceMock) Delete(context.Context, string) error { return nil }

type cleanerMock struct{ calls int }

func (m *cleanerMock) ClearAll(context.Context) error {
	m.calls++
	return nil
}

type tokenStub struct{}

func (tokenStub) ResolveUserID(token string) (string, bool) { return "user-1", token == "valid" }

type counterStub struct{ hits map[string]int64 }

func (c *counterStub) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.hits[key]++
	return c.hits[key], nil
}

type auditStub struct{ count int }

func (a *auditStub) Create(context.Context, *models.AuditLog) error {
	a.count++
	return nil
}

type routerFixture struct {
	engine  *gin.Engine
	cleaner *cleanerMock
	audit   *auditStub
}

func newRouterFixture(testingAPI bool) *routerFixture {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		Admin:     config.AdminConfig{Login: "admin", Password: "qwerty"},
		RateLimit: config.RateLimitConfig{Enabled: true, Limit: 5, Window: 10 * time.Second},
		Testing:   config.TestingConfig{Enabled: testingAPI},
	}
	f := &routerFixture{cleaner: &cleanerMock{}, audit: &auditStub{}}
	metrics := service.NewMetricsService()
	posts := &postServiceMock{}
	comments := &commentServiceMock{}
	f.engine = NewRouter(cfg, Handlers{
		Auth:     NewAuthHandler(&authServiceMock{}, CookieOptions{}),
		Devices:  NewDeviceHandler(deviceServiceMock{}),
		Users:    NewUserHandler(userServiceMock{}),
		Blogs:    NewBlogHandler(&blogServiceMock{}, posts),
		Posts:    NewPostHandler(posts, comments),
		Comments: NewCommentHandler(comments),
		System:   NewSystemHandler(metrics, nil, f.cleaner),
	}, Guards{
		Tokens:      tokenStub{},
		RateLimiter: &counterStub{hits: map[string]int64{}},
		Audit:       f.audit,
		Metrics:     metrics,
	}, zap.NewNop())
	return f
}

func (f *routerFixture) do(method, path, body string, prepare ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, p := range prepare {
		p(req)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouterTestingRouteToggle(t *testing.T) {
	disabled := newRouterFixture(false)
	assert.Equal(t, http.StatusNotFound, disabled.do(http.MethodDelete, "/testing/all-data", "").Code)

	enabled := newRouterFixture(true)
	assert.Equal(t, http.StatusNoContent, enabled.do(http.MethodDelete, "/testing/all-data", "").Code)
	assert.Equal(t, 1, enabled.cleaner.calls)
}

func TestRouterRateLimitsLogin(t *testing.T) {
	f := newRouterFixture(false)
	body := `{"loginOrEmail":"alice","password":"secret1"}`
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/auth/login", body).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/auth/login", body).Code)
}

func TestRouterAdminRoutes(t *testing.T) {
	f := newRouterFixture(false)
	blog := `{"name":"Go","description":"d","websiteUrl":"https://go.dev"}`

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/blogs", blog).Code)
	assert.Equal(t, 0, f.audit.count)

	w := f.do(http.MethodPost, "/blogs", blog, func(r *http.Request) { r.SetBasicAuth("admin", "qwerty") })
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, f.audit.count)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/blogs", "").Code)
	assert.Equal(t, 1, f.audit.count)
}

func TestRouterJWTRoutes(t *testing.T) {
	f := newRouterFixture(false)
	like := `{"likeStatus":"Like"}`

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPut, "/posts/p1/like-status", like).Code)
	w := f.do(http.MethodPut, "/posts/p1/like-status", like, func(r *http.Request) { r.Header.Set("Authorization", "Bearer valid") })
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/posts/p1", "").Code)
}

func TestRouterSystemRoutes(t *testing.T) {
	f := newRouterFixture(false)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "").Code)

	w := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
