package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user id.
const ContextUserKey = "currentUserID"

// AccessTokenHeader is the alternative header carrying a bare access token.
const AccessTokenHeader = "accessToken"

// TokenResolver verifies access tokens.
type TokenResolver interface {
	ResolveUserID(accessToken string) (string, bool)
}

// JWT protects routes by requiring a valid access token.
func JWT(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := AccessToken(c)
		if !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing access token"))
			return
		}

		userID, ok := resolver.ResolveUserID(token)
		if !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid access token"))
			return
		}

		c.Set(ContextUserKey, userID)
		c.Next()
	}
}

// OptionalJWT attaches the user id when a valid token is present but does not block.
func OptionalJWT(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := AccessToken(c); ok {
			if userID, ok := resolver.ResolveUserID(token); ok {
				c.Set(ContextUserKey, userID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}

// AccessToken extracts the bearer token or the accessToken header value.
func AccessToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.GetHeader(AccessTokenHeader); token != "" {
		return token, true
	}
	return "", false
}
