package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/validation"
)

const newestLikesLimit = 3

type likeRepository interface {
	Upsert(ctx context.Context, entityID, userID string, status models.LikeStatus) error
	Counts(ctx context.Context, entityIDs []string) (map[string]models.LikeCounts, error)
	Statuses(ctx context.Context, userID string, entityIDs []string) (map[string]models.LikeStatus, error)
	NewestLikes(ctx context.Context, entityIDs []string, limit int) (map[string][]models.Like, error)
}

// LikeService stores reactions and aggregates them for posts and comments.
type LikeService struct {
	repo      likeRepository
	validator *validator.Validate
}

// NewLikeService creates a LikeService.
func NewLikeService(repo likeRepository, validate *validator.Validate) *LikeService {
	if validate == nil {
		validate = validation.New()
	}
	return &LikeService{repo: repo, validator: validate}
}

// SetStatus records the user's reaction to an entity.
func (s *LikeService) SetStatus(ctx context.Context, entityID, userID string, in models.LikeStatusInput) error {
	if err := s.validator.Struct(in); err != nil {
		return appErrors.FromValidation(err, "invalid like status")
	}
	if err := s.repo.Upsert(ctx, entityID, userID, in.LikeStatus); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store like status")
	}
	return nil
}

// Info aggregates comment reactions. userID may be empty for anonymous
// callers, in which case myStatus is None.
func (s *LikeService) Info(ctx context.Context, ids []string, userID string) (map[string]models.LikesInfo, error) {
	counts, statuses, err := s.load(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.LikesInfo, len(ids))
	for _, id := range ids {
		c := counts[id]
		out[id] = models.LikesInfo{LikesCount: c.Likes, DislikesCount: c.Dislikes, MyStatus: statusOrNone(statuses, id)}
	}
	return out, nil
}

// ExtendedInfo aggregates post reactions including the newest likes.
func (s *LikeService) ExtendedInfo(ctx context.Context, ids []string, userID string) (map[string]models.ExtendedLikesInfo, error) {
	counts, statuses, err := s.load(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	newest, err := s.repo.NewestLikes(ctx, ids, newestLikesLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load newest likes")
	}

	out := make(map[string]models.ExtendedLikesInfo, len(ids))
	for _, id := range ids {
		c := counts[id]
		likes := make([]models.NewestLike, 0, len(newest[id]))
		for _, l := range newest[id] {
			likes = append(likes, models.NewestLike{AddedAt: l.UpdatedAt, UserID: l.UserID, Login: l.UserLogin})
		}
		out[id] = models.ExtendedLikesInfo{
			LikesCount:    c.Likes,
			DislikesCount: c.Dislikes,
			MyStatus:      statusOrNone(statuses, id),
			NewestLikes:   likes,
		}
	}
	return out, nil
}

func (s *LikeService) load(ctx context.Context, ids []string, userID string) (map[string]models.LikeCounts, map[string]models.LikeStatus, error) {
	counts, err := s.repo.Counts(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count likes")
	}
	statuses, err := s.repo.Statuses(ctx, userID, ids)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load like statuses")
	}
	return counts, statuses, nil
}

func statusOrNone(statuses map[string]models.LikeStatus, id string) models.LikeStatus {
	if st, ok := statuses[id]; ok && st != "" {
		return st
	}
	return models.LikeStatusNone
}
