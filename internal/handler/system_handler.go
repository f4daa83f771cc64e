package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/service"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type dataCleaner interface {
	ClearAll(ctx context.Context) error
}

// SystemHandler exposes observability and test support endpoints.
type SystemHandler struct {
	metrics *service.MetricsService
	db      Pinger
	cleaner dataCleaner
}

// NewSystemHandler constructs a system handler.
func NewSystemHandler(metrics *service.MetricsService, db Pinger, cleaner dataCleaner) *SystemHandler {
	return &SystemHandler{metrics: metrics, db: db, cleaner: cleaner}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *SystemHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness checks.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database answers.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// ClearAll godoc
// @Summary Wipe all data
// @Description Only mounted when the testing API is enabled
// @Tags Testing
// @Success 204
// @Router /testing/all-data [delete]
func (h *SystemHandler) ClearAll(c *gin.Context) {
	if err := h.cleaner.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
