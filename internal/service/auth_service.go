package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/validation"
)

const (
	unknownDevice  = "unknown"
	maxDeviceTitle = 512
)

type authUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error)
	FindByConfirmationCode(ctx context.Context, code string) (*models.User, error)
	ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateConfirmationCode(ctx context.Context, id, code string, expiresAt time.Time) error
	MarkConfirmed(ctx context.Context, id string) (bool, error)
	UpsertRecoveryCode(ctx context.Context, rc *models.RecoveryCode) error
	FindRecoveryCode(ctx context.Context, code string) (*models.RecoveryCode, error)
	ResetPassword(ctx context.Context, code, userID, passwordHash string) (bool, error)
}

type sessionRepository interface {
	Upsert(ctx context.Context, device *models.Device) error
	Rotate(ctx context.Context, next *models.Device, prevTokenID string) (bool, error)
	Find(ctx context.Context, userID, deviceID string) (*models.Device, error)
	Delete(ctx context.Context, userID, deviceID string) (bool, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type authMailer interface {
	SendConfirmation(ctx context.Context, email, code string) error
	SendRecovery(ctx context.Context, email, code string) error
}

// AuthConfig defines lifetimes used by the account flows.
type AuthConfig struct {
	ConfirmationTTL time.Duration
	RecoveryTTL     time.Duration
	BcryptCost      int
}

// AuthService coordinates login, token rotation, registration and
// password recovery.
type AuthService struct {
	users     authUserRepository
	sessions  sessionRepository
	audit     auditRepository
	tokens    *TokenService
	mailer    authMailer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionRepository, audit auditRepository, tokens *TokenService, mailer authMailer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if config.ConfirmationTTL <= 0 {
		config.ConfirmationTTL = time.Hour
	}
	if config.RecoveryTTL <= 0 {
		config.RecoveryTTL = time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		audit:     audit,
		tokens:    tokens,
		mailer:    mailer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for session and code expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login verifies credentials and opens or replaces the device session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	req.LoginOrEmail = strings.TrimSpace(req.LoginOrEmail)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid login payload")
	}

	user, err := s.users.FindByLoginOrEmail(ctx, req.LoginOrEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuthEvent(models.AuditActionLogin, AuthOutcomeRejected)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid login or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordAuthEvent(models.AuditActionLogin, AuthOutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid login or password")
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	pair, claims, err := s.issuePair(user.ID, deviceID)
	if err != nil {
		return nil, err
	}

	device := sessionFrom(claims, req.IP, req.UserAgent)
	if err := s.sessions.Upsert(ctx, device); err != nil {
		s.metrics.RecordAuthEvent(models.AuditActionLogin, AuthOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	s.metrics.RecordAuthEvent(models.AuditActionLogin, AuthOutcomeSuccess)
	s.record(ctx, models.AuditActionLogin, user.ID, deviceID, req.IP, req.UserAgent)
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair bound to the same
// device. The presented token stops working once this call returns.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPair, error) {
	_, current, err := s.ValidateSession(ctx, req.RefreshToken)
	if err != nil {
		s.metrics.RecordAuthEvent(models.AuditActionRefresh, AuthOutcomeRejected)
		return nil, err
	}

	pair, claims, err := s.issuePair(current.UserID, current.DeviceID)
	if err != nil {
		return nil, err
	}

	next := sessionFrom(claims, req.IP, req.UserAgent)
	rotated, err := s.sessions.Rotate(ctx, next, current.TokenID)
	if err != nil {
		s.metrics.RecordAuthEvent(models.AuditActionRefresh, AuthOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rotate session")
	}
	if !rotated {
		s.metrics.RecordAuthEvent(models.AuditActionRefresh, AuthOutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token was already used")
	}

	s.metrics.RecordAuthEvent(models.AuditActionRefresh, AuthOutcomeSuccess)
	s.record(ctx, models.AuditActionRefresh, current.UserID, current.DeviceID, req.IP, req.UserAgent)
	return pair, nil
}

// Logout ends the session the refresh token belongs to.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	_, current, err := s.ValidateSession(ctx, refreshToken)
	if err != nil {
		s.metrics.RecordAuthEvent(models.AuditActionLogout, AuthOutcomeRejected)
		return err
	}

	deleted, err := s.sessions.Delete(ctx, current.UserID, current.DeviceID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrUnauthorized, "session already closed")
	}

	s.metrics.RecordAuthEvent(models.AuditActionLogout, AuthOutcomeSuccess)
	s.record(ctx, models.AuditActionLogout, current.UserID, current.DeviceID, current.IP, current.Title)
	return nil
}

// ValidateSession decodes a refresh token and checks it against the stored
// session: issue time, expiry and token id must all match and the session
// must not have expired.
func (s *AuthService) ValidateSession(ctx context.Context, refreshToken string) (*models.RefreshClaims, *models.Device, error) {
	claims, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	device, err := s.sessions.Find(ctx, claims.UserID, claims.DeviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if !device.Matches(claims) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is no longer valid")
	}
	if !s.now().Before(device.ExpiresAt) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}
	return claims, device, nil
}

// Register creates an unconfirmed account and sends its confirmation code.
func (s *AuthService) Register(ctx context.Context, req models.RegistrationRequest) (string, error) {
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.FromValidation(err, "invalid registration payload")
	}

	loginTaken, emailTaken, err := s.users.ExistsByLoginOrEmail(ctx, req.Login, req.Email)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check user")
	}
	if loginTaken {
		return "", appErrors.BadRequest("login", "login already exists")
	}
	if emailTaken {
		return "", appErrors.BadRequest("email", "email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	code := uuid.NewString()
	expiresAt := s.now().UTC().Add(s.config.ConfirmationTTL)
	user := &models.User{
		ID:                    uuid.NewString(),
		Login:                 req.Login,
		Email:                 req.Email,
		PasswordHash:          string(hash),
		ConfirmationCode:      &code,
		ConfirmationExpiresAt: &expiresAt,
		CreatedAt:             s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to create user")
	}

	if err := s.mailer.SendConfirmation(ctx, user.Email, code); err != nil {
		s.logger.Warn("confirmation email not sent", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.record(ctx, models.AuditActionRegistration, user.ID, "", "", "")
	return user.ID, nil
}

// ResendConfirmation issues a new confirmation code for an unconfirmed
// account and mails it.
func (s *AuthService) ResendConfirmation(ctx context.Context, req models.EmailRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid email")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.BadRequest("email", "user with this email does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user.IsConfirmed {
		return appErrors.BadRequest("email", "email is already confirmed")
	}

	code := uuid.NewString()
	if err := s.users.UpdateConfirmationCode(ctx, user.ID, code, s.now().UTC().Add(s.config.ConfirmationTTL)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update confirmation code")
	}
	if err := s.mailer.SendConfirmation(ctx, user.Email, code); err != nil {
		s.logger.Warn("confirmation email not resent", zap.String("user_id", user.ID), zap.Error(err))
		return appErrors.BadRequest("email", "failed to send confirmation email")
	}
	return nil
}

// ConfirmEmail consumes a confirmation code.
func (s *AuthService) ConfirmEmail(ctx context.Context, req models.ConfirmationRequest) error {
	req.Code = strings.TrimSpace(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid confirmation code")
	}

	user, err := s.users.FindByConfirmationCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.BadRequest("code", "confirmation code is incorrect")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user.IsConfirmed {
		return appErrors.BadRequest("code", "email is already confirmed")
	}
	if user.ConfirmationExpiresAt != nil && s.now().After(*user.ConfirmationExpiresAt) {
		return appErrors.BadRequest("code", "confirmation code expired")
	}

	confirmed, err := s.users.MarkConfirmed(ctx, user.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm user")
	}
	if !confirmed {
		return appErrors.BadRequest("code", "email is already confirmed")
	}
	return nil
}

// PasswordRecovery stores a recovery code for a known email and mails it.
// Unknown emails succeed silently and return an empty code.
func (s *AuthService) PasswordRecovery(ctx context.Context, req models.EmailRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.FromValidation(err, "invalid email")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	rc := &models.RecoveryCode{
		Code:      uuid.NewString(),
		Email:     user.Email,
		ExpiresAt: s.now().UTC().Add(s.config.RecoveryTTL),
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.UpsertRecoveryCode(ctx, rc); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store recovery code")
	}
	if err := s.mailer.SendRecovery(ctx, user.Email, rc.Code); err != nil {
		s.logger.Warn("recovery email not sent", zap.String("user_id", user.ID), zap.Error(err))
	}
	return rc.Code, nil
}

// NewPassword consumes a recovery code, stores the new password and closes
// every session of the account.
func (s *AuthService) NewPassword(ctx context.Context, req models.NewPasswordRequest) error {
	req.RecoveryCode = strings.TrimSpace(req.RecoveryCode)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid new password payload")
	}

	rc, err := s.users.FindRecoveryCode(ctx, req.RecoveryCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.BadRequest("recoveryCode", "recovery code is incorrect")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch recovery code")
	}
	if s.now().After(rc.ExpiresAt) {
		return appErrors.BadRequest("recoveryCode", "recovery code expired")
	}

	user, err := s.users.FindByEmail(ctx, rc.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.BadRequest("recoveryCode", "recovery code is incorrect")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.config.BcryptCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	consumed, err := s.users.ResetPassword(ctx, rc.Code, user.ID, string(hash))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	if !consumed {
		return appErrors.BadRequest("recoveryCode", "recovery code is incorrect")
	}
	if err := s.sessions.DeleteAllForUser(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after password reset", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.record(ctx, models.AuditActionPasswordReset, user.ID, "", "", "")
	return nil
}

// Me describes the owner of an access token.
func (s *AuthService) Me(ctx context.Context, accessToken string) (*models.MeResponse, error) {
	userID, ok := s.tokens.ResolveUserID(accessToken)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "couldn't find user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return &models.MeResponse{Email: user.Email, Login: user.Login, UserID: user.ID}, nil
}

// ResolveUserID returns the user id of a valid access token.
func (s *AuthService) ResolveUserID(accessToken string) (string, bool) {
	return s.tokens.ResolveUserID(accessToken)
}

func (s *AuthService) issuePair(userID, deviceID string) (*models.TokenPair, *models.RefreshClaims, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	refresh, err := s.tokens.IssueRefreshToken(userID, deviceID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}
	claims, err := s.tokens.DecodeRefreshToken(refresh)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode issued refresh token")
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, claims, nil
}

func sessionFrom(claims *models.RefreshClaims, ip, userAgent string) *models.Device {
	userAgent = deviceTitle(userAgent)
	if userAgent == "" {
		userAgent = unknownDevice
	}
	return &models.Device{
		UserID:    claims.UserID,
		DeviceID:  claims.DeviceID,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAtTime(),
		ExpiresAt: claims.ExpiresAtTime(),
		IP:        ip,
		Title:     userAgent,
	}
}

// deviceTitle fits a User-Agent into devices.title, counted in characters
// like Postgres VARCHAR.
func deviceTitle(userAgent string) string {
	userAgent = strings.ToValidUTF8(userAgent, "")
	if utf8.RuneCountInString(userAgent) <= maxDeviceTitle {
		return userAgent
	}
	return string([]rune(userAgent)[:maxDeviceTitle])
}

func (s *AuthService) record(ctx context.Context, action, userID, deviceID, ip, userAgent string) {
	if s.audit == nil {
		return
	}
	var details []byte
	if deviceID != "" {
		details, _ = json.Marshal(map[string]string{"deviceId": deviceID})
	}
	entry := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: &userID,
		Details:    details,
		IPAddress:  ip,
		UserAgent:  deviceTitle(userAgent),
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
