package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/service"
	"github.com/noah-isme/blog-platform-api/pkg/config"
	"github.com/noah-isme/blog-platform-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/blog-platform-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/blog-platform-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth     *AuthHandler
	Devices  *DeviceHandler
	Users    *UserHandler
	Blogs    *BlogHandler
	Posts    *PostHandler
	Comments *CommentHandler
	System   *SystemHandler
}

// Guards are the collaborators of the route middleware.
type Guards struct {
	Tokens      middleware.TokenResolver
	RateLimiter middleware.HitCounter
	Audit       middleware.AuditWriter
	Metrics     *service.MetricsService
}

// NewRouter builds the gin engine with all routes.
func NewRouter(cfg *config.Config, h Handlers, g Guards, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(g.Metrics))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	admin := middleware.BasicAuth(cfg.Admin)
	limit := middleware.RateLimit(g.RateLimiter, cfg.RateLimit, g.Metrics, logr)
	jwt := middleware.JWT(g.Tokens)
	optional := middleware.OptionalJWT(g.Tokens)

	auth := api.Group("/auth")
	auth.POST("/login", limit, h.Auth.Login)
	auth.POST("/refresh-token", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/registration", limit, h.Auth.Register)
	auth.POST("/registration-confirmation", limit, h.Auth.ConfirmRegistration)
	auth.POST("/registration-email-resending", limit, h.Auth.ResendConfirmation)
	auth.POST("/password-recovery", limit, h.Auth.PasswordRecovery)
	auth.POST("/new-password", limit, h.Auth.NewPassword)

	devices := api.Group("/security/devices")
	devices.GET("", h.Devices.List)
	devices.DELETE("", h.Devices.DeleteOthers)
	devices.DELETE("/:deviceId", h.Devices.Delete)

	users := api.Group("/users", admin, middleware.AdminAudit(g.Audit, "user", logr))
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.DELETE("/:id", h.Users.Delete)

	blogAudit := middleware.AdminAudit(g.Audit, "blog", logr)
	blogs := api.Group("/blogs")
	blogs.GET("", h.Blogs.List)
	blogs.GET("/:id", h.Blogs.Get)
	blogs.GET("/:id/posts", optional, h.Blogs.ListPosts)
	blogs.POST("", admin, blogAudit, h.Blogs.Create)
	blogs.PUT("/:id", admin, blogAudit, h.Blogs.Update)
	blogs.DELETE("/:id", admin, blogAudit, h.Blogs.Delete)
	blogs.POST("/:id/posts", admin, blogAudit, h.Blogs.CreatePost)

	postAudit := middleware.AdminAudit(g.Audit, "post", logr)
	posts := api.Group("/posts")
	posts.GET("", optional, h.Posts.List)
	posts.GET("/:id", optional, h.Posts.Get)
	posts.POST("", admin, postAudit, h.Posts.Create)
	posts.PUT("/:id", admin, postAudit, h.Posts.Update)
	posts.DELETE("/:id", admin, postAudit, h.Posts.Delete)
	posts.PUT("/:id/like-status", jwt, h.Posts.SetLikeStatus)
	posts.GET("/:id/comments", optional, h.Posts.ListComments)
	posts.POST("/:id/comments", jwt, h.Posts.CreateComment)

	comments := api.Group("/comments")
	comments.GET("/:id", optional, h.Comments.Get)
	comments.PUT("/:id", jwt, h.Comments.Update)
	comments.DELETE("/:id", jwt, h.Comments.Delete)
	comments.PUT("/:id/like-status", jwt, h.Comments.SetLikeStatus)

	if cfg.Testing.Enabled {
		api.DELETE("/testing/all-data", h.System.ClearAll)
	}

	return r
}
