package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Register(ctx context.Context, req models.RegistrationRequest) (string, error)
	ResendConfirmation(ctx context.Context, req models.EmailRequest) error
	ConfirmEmail(ctx context.Context, req models.ConfirmationRequest) error
	PasswordRecovery(ctx context.Context, req models.EmailRequest) (string, error)
	NewPassword(ctx context.Context, req models.NewPasswordRequest) error
	Me(ctx context.Context, accessToken string) (*models.MeResponse, error)
}

// CookieOptions controls the refresh token cookie.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieOptions
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by login or email. The refresh token is set as an httpOnly cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope{data=models.AccessTokenResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	pair, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writePair(c, pair)
}

// Refresh godoc
// @Summary Refresh token pair
// @Description Rotate the refresh token cookie and issue a new access token
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope{data=models.AccessTokenResponse}
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh-token [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), models.RefreshRequest{
		RefreshToken: token,
		IP:           c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writePair(c, pair)
}

// Logout godoc
// @Summary Logout current device
// @Tags Authentication
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	response.NoContent(c)
}

// Me godoc
// @Summary Get current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.MeResponse}
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := middleware.AccessToken(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing access token"))
		return
	}
	me, err := h.service.Me(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, me, nil)
}

// Register godoc
// @Summary Register user
// @Description Creates an unconfirmed account and emails a confirmation code
// @Tags Authentication
// @Accept json
// @Param payload body models.RegistrationRequest true "Registration payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/registration [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegistrationRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ConfirmRegistration godoc
// @Summary Confirm registration
// @Tags Authentication
// @Accept json
// @Param payload body models.ConfirmationRequest true "Confirmation code"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/registration-confirmation [post]
func (h *AuthHandler) ConfirmRegistration(c *gin.Context) {
	var req models.ConfirmationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.ConfirmEmail(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResendConfirmation godoc
// @Summary Resend confirmation email
// @Tags Authentication
// @Accept json
// @Param payload body models.EmailRequest true "Email"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/registration-email-resending [post]
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req models.EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.ResendConfirmation(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PasswordRecovery godoc
// @Summary Request password recovery
// @Description Always succeeds for well-formed emails so account existence is not revealed
// @Tags Authentication
// @Accept json
// @Param payload body models.EmailRequest true "Email"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/password-recovery [post]
func (h *AuthHandler) PasswordRecovery(c *gin.Context) {
	var req models.EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.service.PasswordRecovery(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NewPassword godoc
// @Summary Set a new password
// @Tags Authentication
// @Accept json
// @Param payload body models.NewPasswordRequest true "Recovery code and new password"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/new-password [post]
func (h *AuthHandler) NewPassword(c *gin.Context) {
	var req models.NewPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.NewPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) writePair(c *gin.Context, pair *models.TokenPair) {
	h.setRefreshCookie(c, pair.RefreshToken, int(h.cookie.MaxAge.Seconds()))
	c.Header(middleware.AccessTokenHeader, pair.AccessToken)
	response.JSON(c, http.StatusOK, models.AccessTokenResponse{AccessToken: pair.AccessToken}, nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", h.cookie.Secure, true)
}
