package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/pkg/cache"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
)

type truncater interface {
	Truncate(ctx context.Context) error
}

// TestingService wipes all data for end-to-end suites.
type TestingService struct {
	repo   truncater
	cache  *CacheService
	logger *zap.Logger
}

// NewTestingService creates a TestingService. cache may be nil.
func NewTestingService(repo truncater, cacheSvc *CacheService, logger *zap.Logger) *TestingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestingService{repo: repo, cache: cacheSvc, logger: logger}
}

// ClearAll truncates every table and drops cached blogs.
func (s *TestingService) ClearAll(ctx context.Context) error {
	if err := s.repo.Truncate(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear data")
	}
	s.cache.InvalidateMatching(ctx, cache.Key("blog", "*"))
	s.logger.Warn("all data cleared")
	return nil
}
