package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/blog-platform-api/api/swagger"
	"github.com/noah-isme/blog-platform-api/internal/handler"
	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/repository"
	"github.com/noah-isme/blog-platform-api/internal/service"
	"github.com/noah-isme/blog-platform-api/pkg/cache"
	"github.com/noah-isme/blog-platform-api/pkg/config"
	"github.com/noah-isme/blog-platform-api/pkg/database"
	"github.com/noah-isme/blog-platform-api/pkg/logger"
	"github.com/noah-isme/blog-platform-api/pkg/mailer"
	"github.com/noah-isme/blog-platform-api/pkg/validation"
)

// @title Blog Platform API
// @version 1.0.0
// @description Blogs, posts, comments and likes with JWT sessions per device.
// @BasePath /
// @schemes http https
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(cfg.Database.URL(), "up"); err != nil {
			return err
		}
		logr.Info("database migrated")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	validate := validation.New()

	var (
		kv      repository.RedisKV
		counter middleware.HitCounter
	)
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		kv = redisClient
		counter = repository.NewRateLimitRepository(redisClient)
	}

	var sender mailer.Mailer = mailer.Noop{}
	if cfg.Mail.Enabled {
		smtp, err := mailer.NewSMTP(cfg.Mail)
		if err != nil {
			return err
		}
		sender = smtp
	}

	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(kv), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && kv != nil)
	emailSvc := service.NewEmailService(sender, metrics, service.EmailConfig{
		ConfirmationURL: cfg.Mail.ConfirmationURL,
		RecoveryURL:     cfg.Mail.RecoveryURL,
		Workers:         cfg.Mail.Workers,
		Retries:         cfg.Mail.Retries,
	}, logr)
	tokens := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.Expiration,
		RefreshTTL:    cfg.JWT.RefreshExpiration,
		Issuer:        cfg.JWT.Issuer,
	})
	authSvc := service.NewAuthService(userRepo, deviceRepo, auditRepo, tokens, emailSvc, metrics, validate, logr, service.AuthConfig{})
	deviceSvc := service.NewDeviceService(authSvc, deviceRepo, auditRepo, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	likeSvc := service.NewLikeService(likeRepo, validate)
	blogSvc := service.NewBlogService(blogRepo, cacheSvc, validate, logr)
	postSvc := service.NewPostService(postRepo, blogSvc, likeSvc, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, postSvc, userRepo, likeSvc, validate, logr)
	testingSvc := service.NewTestingService(repository.NewTestingRepository(db), cacheSvc, logr)

	router := handler.NewRouter(cfg, handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, handler.CookieOptions{Secure: cfg.Cookie.Secure, MaxAge: cfg.JWT.RefreshExpiration}),
		Devices:  handler.NewDeviceHandler(deviceSvc),
		Users:    handler.NewUserHandler(userSvc),
		Blogs:    handler.NewBlogHandler(blogSvc, postSvc),
		Posts:    handler.NewPostHandler(postSvc, commentSvc),
		Comments: handler.NewCommentHandler(commentSvc),
		System:   handler.NewSystemHandler(metrics, db, testingSvc),
	}, handler.Guards{
		Tokens:      authSvc,
		RateLimiter: counter,
		Audit:       auditRepo,
		Metrics:     metrics,
	}, logr)

	emailSvc.Start(context.Background())
	defer emailSvc.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Warn("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server exited")
	return nil
}
