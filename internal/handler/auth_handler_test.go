package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
)

type authServiceMock struct {
	loginReq    models.LoginRequest
	refreshReq  models.RefreshRequest
	logoutToken string
	meToken     string
	registerReq models.RegistrationRequest
	err         error
}

func (m *authServiceMock) Login(_ context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	m.loginReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
}

func (m *authServiceMock) Refresh(_ context.Context, req models.RefreshRequest) (*models.TokenPair, error) {
	m.refreshReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (m *authServiceMock) Logout(_ context.Context, token string) error {
	m.logoutToken = token
	return m.err
}

func (m *authServiceMock) Register(_ context.Context, req models.RegistrationRequest) (string, error) {
	m.registerReq = req
	return "user-1", m.err
}

func (m *authServiceMock) ResendConfirmation(context.Context, models.EmailRequest) error { return m.err }

func (m *authServiceMock) ConfirmEmail(context.Context, models.ConfirmationRequest) error { return m.err }

func (m *authServiceMock) PasswordRecovery(context.Context, models.EmailRequest) (string, error) {
	return "code", m.err
}

func (m *authServiceMock) NewPassword(context.Context, models.NewPasswordRequest) error { return m.err }

func (m *authServiceMock) Me(_ context.Context, token string) (*models.MeResponse, error) {
	m.meToken = token
	if m.err != nil {
		return nil, m.err
	}
	return &models.MeResponse{Email: "a@example.com", Login: "alice", UserID: "user-1"}, nil
}

func newContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestAuthHandlerLoginSetsCookieAndHeader(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc, CookieOptions{Secure: true, MaxAge: 20 * time.Second})

	c, w := newContext(http.MethodPost, "/auth/login", models.LoginRequest{LoginOrEmail: "alice", Password: "secret1"})
	c.Request.Header.Set("User-Agent", "Firefox")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "access-1", w.Header().Get("accessToken"))
	assert.JSONEq(t, `{"data":{"accessToken":"access-1"}}`, w.Body.String())

	cookie := findCookie(w, refreshCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 20, cookie.MaxAge)

	assert.Equal(t, "alice", svc.loginReq.LoginOrEmail)
	assert.Equal(t, "Firefox", svc.loginReq.UserAgent)
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	svc := &authServiceMock{err: appErrors.ErrInvalidCredentials}
	h := NewAuthHandler(svc, CookieOptions{})

	c, w := newContext(http.MethodPost, "/auth/login", models.LoginRequest{LoginOrEmail: "alice", Password: "nope"})
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, findCookie(w, refreshCookieName))
}

func TestAuthHandlerInvalidJSON(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{}, CookieOptions{})
	c, w := newContext(http.MethodPost, "/auth/registration", "{")
	h.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerRefreshUsesCookie(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc, CookieOptions{MaxAge: time.Minute})

	c, w := newContext(http.MethodPost, "/auth/refresh-token", nil)
	h.Refresh(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(http.MethodPost, "/auth/refresh-token", nil)
	c.Request.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-1"})
	h.Refresh(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh-1", svc.refreshReq.RefreshToken)
	assert.Equal(t, "refresh-2", findCookie(w, refreshCookieName).Value)
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc, CookieOptions{Secure: true})

	c, w := newContext(http.MethodPost, "/auth/logout", nil)
	c.Request.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-1"})
	h.Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "refresh-1", svc.logoutToken)
	cookie := findCookie(w, refreshCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func TestAuthHandlerMe(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc, CookieOptions{})

	c, w := newContext(http.MethodGet, "/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(http.MethodGet, "/auth/me", nil)
	c.Request.Header.Set("Authorization", "Bearer access-1")
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "access-1", svc.meToken)
	assert.JSONEq(t, `{"data":{"email":"a@example.com","login":"alice","userId":"user-1"}}`, w.Body.String())
}

func TestAuthHandlerRegistrationErrorsMessages(t *testing.T) {
	svc := &authServiceMock{err: appErrors.BadRequest("email", "email already taken")}
	h := NewAuthHandler(svc, CookieOptions{})

	c, w := newContext(http.MethodPost, "/auth/registration", models.RegistrationRequest{Login: "alice", Password: "secret1", Email: "a@example.com"})
	h.Register(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			ErrorsMessages []appErrors.FieldError `json:"errorsMessages"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Error.ErrorsMessages, 1)
	assert.Equal(t, "email", body.Error.ErrorsMessages[0].Field)
}
