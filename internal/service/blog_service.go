package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/pkg/cache"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/validation"
)

type blogRepository interface {
	List(ctx context.Context, filter models.BlogFilter) ([]models.Blog, int, error)
	FindByID(ctx context.Context, id string) (*models.Blog, error)
	Create(ctx context.Context, blog *models.Blog) error
	Update(ctx context.Context, id string, in models.BlogInput) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BlogService manages blogs. Single blog reads go through the cache.
type BlogService struct {
	repo      blogRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlogService creates a BlogService. cache may be nil.
func NewBlogService(repo blogRepository, cacheSvc *CacheService, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &BlogService{repo: repo, cache: cacheSvc, validator: validate, logger: logger}
}

func blogCacheKey(id string) string {
	return cache.Key("blog", id)
}

// List returns a page of blogs.
func (s *BlogService) List(ctx context.Context, filter models.BlogFilter) (*models.Page[models.Blog], error) {
	filter.ListQuery = filter.ListQuery.Normalize()
	blogs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blogs")
	}
	return models.NewPage(blogs, filter.ListQuery, total), nil
}

// Get returns a blog by id.
func (s *BlogService) Get(ctx context.Context, id string) (*models.Blog, error) {
	var cached models.Blog
	if s.cache.Get(ctx, blogCacheKey(id), &cached) {
		return &cached, nil
	}

	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch blog")
	}
	s.cache.Set(ctx, blogCacheKey(id), blog, 0)
	return blog, nil
}

// Create adds a blog.
func (s *BlogService) Create(ctx context.Context, in models.BlogInput) (*models.Blog, error) {
	in = trimBlogInput(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.FromValidation(err, "invalid blog payload")
	}
	blog := &models.Blog{Name: in.Name, Description: in.Description, WebsiteURL: in.WebsiteURL}
	if err := s.repo.Create(ctx, blog); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create blog")
	}
	return blog, nil
}

// Update edits a blog.
func (s *BlogService) Update(ctx context.Context, id string, in models.BlogInput) error {
	in = trimBlogInput(in)
	if err := s.validator.Struct(in); err != nil {
		return appErrors.FromValidation(err, "invalid blog payload")
	}
	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update blog")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "blog not found")
	}
	s.cache.Invalidate(ctx, blogCacheKey(id))
	return nil
}

// Delete removes a blog with its posts.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete blog")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "blog not found")
	}
	s.cache.Invalidate(ctx, blogCacheKey(id))
	return nil
}

func trimBlogInput(in models.BlogInput) models.BlogInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	return in
}
