package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/validation"
)

type postRepository interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id string, in models.PostWithBlogInput) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type blogReader interface {
	Get(ctx context.Context, id string) (*models.Blog, error)
}

// PostService manages posts and their reactions.
type PostService struct {
	repo      postRepository
	blogs     blogReader
	likes     *LikeService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPostService creates a PostService.
func NewPostService(repo postRepository, blogs blogReader, likes *LikeService, validate *validator.Validate, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &PostService{repo: repo, blogs: blogs, likes: likes, validator: validate, logger: logger}
}

// List returns a page of posts, optionally limited to filter.BlogID.
// userID is empty for anonymous callers.
func (s *PostService) List(ctx context.Context, filter models.PostFilter, userID string) (*models.Page[models.PostView], error) {
	if filter.BlogID != "" {
		if _, err := s.blogs.Get(ctx, filter.BlogID); err != nil {
			return nil, err
		}
	}
	filter.ListQuery = filter.ListQuery.Normalize()
	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}
	views, err := s.views(ctx, posts, userID)
	if err != nil {
		return nil, err
	}
	return models.NewPage(views, filter.ListQuery, total), nil
}

// Get returns one post.
func (s *PostService) Get(ctx context.Context, id, userID string) (*models.PostView, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Post{*post}, userID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create adds a post to the blog named in the payload.
func (s *PostService) Create(ctx context.Context, in models.PostWithBlogInput) (*models.PostView, error) {
	in.PostInput = trimPostInput(in.PostInput)
	in.BlogID = strings.TrimSpace(in.BlogID)
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.FromValidation(err, "invalid post payload")
	}
	blog, err := s.referencedBlog(ctx, in.BlogID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, blog, in.PostInput)
}

// CreateForBlog adds a post under blogID; an unknown blog is NotFound.
func (s *PostService) CreateForBlog(ctx context.Context, blogID string, in models.PostInput) (*models.PostView, error) {
	in = trimPostInput(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.FromValidation(err, "invalid post payload")
	}
	blog, err := s.blogs.Get(ctx, blogID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, blog, in)
}

// Update edits a post.
func (s *PostService) Update(ctx context.Context, id string, in models.PostWithBlogInput) error {
	in.PostInput = trimPostInput(in.PostInput)
	in.BlogID = strings.TrimSpace(in.BlogID)
	if err := s.validator.Struct(in); err != nil {
		return appErrors.FromValidation(err, "invalid post payload")
	}
	if _, err := s.referencedBlog(ctx, in.BlogID); err != nil {
		return err
	}
	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update post")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	return nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	return nil
}

// SetLikeStatus records the caller's reaction to a post.
func (s *PostService) SetLikeStatus(ctx context.Context, postID, userID string, in models.LikeStatusInput) error {
	if _, err := s.find(ctx, postID); err != nil {
		return err
	}
	return s.likes.SetStatus(ctx, postID, userID, in)
}

// Exists reports NotFound when the post is missing.
func (s *PostService) Exists(ctx context.Context, id string) error {
	_, err := s.find(ctx, id)
	return err
}

func (s *PostService) create(ctx context.Context, blog *models.Blog, in models.PostInput) (*models.PostView, error) {
	post := &models.Post{
		Title:            in.Title,
		ShortDescription: in.ShortDescription,
		Content:          in.Content,
		BlogID:           blog.ID,
		BlogName:         blog.Name,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	view := postView(*post, models.ExtendedLikesInfo{MyStatus: models.LikeStatusNone, NewestLikes: []models.NewestLike{}})
	return &view, nil
}

func (s *PostService) referencedBlog(ctx context.Context, blogID string) (*models.Blog, error) {
	blog, err := s.blogs.Get(ctx, blogID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.BadRequest("blogId", "blog does not exist")
		}
		return nil, err
	}
	return blog, nil
}

func (s *PostService) find(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch post")
	}
	return post, nil
}

func (s *PostService) views(ctx context.Context, posts []models.Post, userID string) ([]models.PostView, error) {
	if len(posts) == 0 {
		return []models.PostView{}, nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	info, err := s.likes.ExtendedInfo(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = postView(p, info[p.ID])
	}
	return views, nil
}

func postView(p models.Post, info models.ExtendedLikesInfo) models.PostView {
	return models.PostView{
		ID:                p.ID,
		Title:             p.Title,
		ShortDescription:  p.ShortDescription,
		Content:           p.Content,
		BlogID:            p.BlogID,
		BlogName:          p.BlogName,
		CreatedAt:         p.CreatedAt,
		ExtendedLikesInfo: info,
	}
}

func trimPostInput(in models.PostInput) models.PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.ShortDescription = strings.TrimSpace(in.ShortDescription)
	in.Content = strings.TrimSpace(in.Content)
	return in
}
