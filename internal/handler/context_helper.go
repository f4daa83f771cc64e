package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

const refreshCookieName = "refreshToken"

// listQuery reads the shared paging parameters. Invalid numbers fall back to
// the defaults applied by ListQuery.Normalize.
func listQuery(c *gin.Context) models.ListQuery {
	q := models.ListQuery{
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
	}
	if n, err := strconv.Atoi(c.Query("pageNumber")); err == nil {
		q.PageNumber = n
	}
	if n, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		q.PageSize = n
	}
	return q.Normalize()
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

func refreshToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token cookie missing"))
		return "", false
	}
	return token, true
}
