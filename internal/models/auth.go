package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	LoginOrEmail string `json:"loginOrEmail" validate:"required"`
	Password     string `json:"password" validate:"required"`
	DeviceID     string `json:"-"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshRequest carries the cookie token and the caller metadata.
type RefreshRequest struct {
	RefreshToken string
	IP           string
	UserAgent    string
}

// TokenPair is the outcome of login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// AccessTokenResponse is the JSON body of login and refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// RegistrationRequest creates an unconfirmed account.
type RegistrationRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=10,login"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Email    string `json:"email" validate:"required,email"`
}

// EmailRequest is used by resending and password recovery.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmationRequest confirms a registration.
type ConfirmationRequest struct {
	Code string `json:"code" validate:"required"`
}

// NewPasswordRequest completes the password recovery.
type NewPasswordRequest struct {
	NewPassword  string `json:"newPassword" validate:"required,min=6,max=20"`
	RecoveryCode string `json:"recoveryCode" validate:"required"`
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

// AccessClaims is the payload of access tokens.
type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of refresh tokens. The registered ID (jti)
// distinguishes tokens issued within the same second.
type RefreshClaims struct {
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns iat or the zero time.
func (c *RefreshClaims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns exp or the zero time.
func (c *RefreshClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
