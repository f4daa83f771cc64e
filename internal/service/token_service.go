package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
)

// TokenConfig defines signing keys and lifetimes of issued tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService issues and verifies HS256 access and refresh tokens.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService constructs a TokenService. The refresh secret falls back
// to the access secret.
func NewTokenService(config TokenConfig) *TokenService {
	if config.AccessTTL <= 0 {
		config.AccessTTL = 10 * time.Minute
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}
	if config.RefreshSecret == "" {
		config.RefreshSecret = config.AccessSecret
	}
	return &TokenService{config: config, now: time.Now}
}

// WithClock replaces the time source.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssueAccessToken signs a short lived token carrying the user id.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	now := s.now().UTC()
	claims := models.AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a token bound to one device. Every token gets a
// fresh jti so two tokens issued within the same second still differ.
func (s *TokenService) IssueRefreshToken(userID, deviceID string) (string, error) {
	now := s.now().UTC()
	claims := models.RefreshClaims{
		UserID:   userID,
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.RefreshTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.RefreshSecret))
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// DecodeRefreshToken verifies the signature and shape of a refresh token.
// Expiry is not enforced here; callers compare it against the stored session.
func (s *TokenService) DecodeRefreshToken(token string) (*models.RefreshClaims, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is missing")
	}
	claims := &models.RefreshClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc(s.config.RefreshSecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid refresh token")
	}
	if claims.UserID == "" || claims.DeviceID == "" || claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "malformed refresh token")
	}
	return claims, nil
}

// ResolveUserID verifies an access token, expiry included, and returns
// its user id. Any failure yields ("", false).
func (s *TokenService) ResolveUserID(token string) (string, bool) {
	claims, err := s.parseAccess(token)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

func (s *TokenService) parseAccess(token string) (*models.AccessClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	claims := &models.AccessClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, s.keyFunc(s.config.AccessSecret), opts...); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}

func (s *TokenService) keyFunc(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}
}
