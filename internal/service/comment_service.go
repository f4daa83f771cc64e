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

type commentRepository interface {
	ListByPost(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int, error)
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

type postChecker interface {
	Exists(ctx context.Context, id string) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CommentService manages comments on posts.
type CommentService struct {
	repo      commentRepository
	posts     postChecker
	users     userFinder
	likes     *LikeService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(repo commentRepository, posts postChecker, users userFinder, likes *LikeService, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &CommentService{repo: repo, posts: posts, users: users, likes: likes, validator: validate, logger: logger}
}

// ListByPost returns a page of comments of a post.
func (s *CommentService) ListByPost(ctx context.Context, filter models.CommentFilter, userID string) (*models.Page[models.CommentView], error) {
	if err := s.posts.Exists(ctx, filter.PostID); err != nil {
		return nil, err
	}
	filter.ListQuery = filter.ListQuery.Normalize()
	comments, total, err := s.repo.ListByPost(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	views, err := s.views(ctx, comments, userID)
	if err != nil {
		return nil, err
	}
	return models.NewPage(views, filter.ListQuery, total), nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, id, userID string) (*models.CommentView, error) {
	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Comment{*comment}, userID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create adds a comment by userID to a post.
func (s *CommentService) Create(ctx context.Context, postID, userID string, in models.CommentInput) (*models.CommentView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.FromValidation(err, "invalid comment payload")
	}
	if err := s.posts.Exists(ctx, postID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	comment := &models.Comment{PostID: postID, Content: in.Content, UserID: user.ID, UserLogin: user.Login}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	view := commentView(*comment, models.LikesInfo{MyStatus: models.LikeStatusNone})
	return &view, nil
}

// Update edits a comment owned by userID.
func (s *CommentService) Update(ctx context.Context, id, userID string, in models.CommentInput) error {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Struct(in); err != nil {
		return appErrors.FromValidation(err, "invalid comment payload")
	}
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.UpdateContent(ctx, id, in.Content); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update comment")
	}
	return nil
}

// Delete removes a comment owned by userID.
func (s *CommentService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}

// SetLikeStatus records the caller's reaction to a comment.
func (s *CommentService) SetLikeStatus(ctx context.Context, commentID, userID string, in models.LikeStatusInput) error {
	if _, err := s.find(ctx, commentID); err != nil {
		return err
	}
	return s.likes.SetStatus(ctx, commentID, userID, in)
}

func (s *CommentService) owned(ctx context.Context, id, userID string) (*models.Comment, error) {
	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "comment belongs to another user")
	}
	return comment, nil
}

func (s *CommentService) find(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch comment")
	}
	return comment, nil
}

func (s *CommentService) views(ctx context.Context, comments []models.Comment, userID string) ([]models.CommentView, error) {
	if len(comments) == 0 {
		return []models.CommentView{}, nil
	}
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	info, err := s.likes.Info(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = commentView(c, info[c.ID])
	}
	return views, nil
}

func commentView(c models.Comment, info models.LikesInfo) models.CommentView {
	return models.CommentView{
		ID:              c.ID,
		Content:         c.Content,
		CommentatorInfo: models.CommentatorInfo{UserID: c.UserID, UserLogin: c.UserLogin},
		CreatedAt:       c.CreatedAt,
		LikesInfo:       info,
	}
}
