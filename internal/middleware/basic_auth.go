package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/pkg/config"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

// BasicAuth guards admin routes with the configured credentials.
func BasicAuth(admin config.AdminConfig) gin.HandlerFunc {
	login := []byte(admin.Login)
	password := []byte(admin.Password)

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), login) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), password) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin credentials"))
			return
		}
		c.Next()
	}
}
