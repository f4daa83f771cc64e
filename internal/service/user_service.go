package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/validation"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, bool, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

// UserService handles admin user management.
type UserService struct {
	repo       userRepository
	validator  *validator.Validate
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger, bcryptCost: bcrypt.DefaultCost}
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) (*models.Page[models.UserView], error) {
	filter.ListQuery = filter.ListQuery.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return models.NewPage(views, filter.ListQuery, total), nil
}

// Create adds an already confirmed user.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.UserView, error) {
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid user payload")
	}

	loginTaken, emailTaken, err := s.repo.ExistsByLoginOrEmail(ctx, req.Login, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check user")
	}
	if loginTaken {
		return nil, appErrors.BadRequest("login", "login already exists")
	}
	if emailTaken {
		return nil, appErrors.BadRequest("email", "email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Login:        req.Login,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsConfirmed:  true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to create user")
	}
	s.logger.Info("user created by admin", zap.String("user_id", user.ID))

	view := user.View()
	return &view, nil
}

// Delete removes a user by id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return nil
}
