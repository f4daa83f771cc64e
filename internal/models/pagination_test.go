package models

import (
	"math"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{PageNumber: -2, PageSize: 500, SortDirection: "Asc"}.Normalize()
	assert.Equal(t, 1, q.PageNumber)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, "createdAt", q.SortBy)
	assert.Equal(t, "ASC", q.SortDirection)

	q = ListQuery{PageNumber: 3, PageSize: 5, SortDirection: "sideways"}.Normalize()
	assert.Equal(t, "DESC", q.SortDirection)
	assert.Equal(t, 10, q.Offset())
}

func TestListQueryOffsetDoesNotOverflow(t *testing.T) {
	q := ListQuery{PageNumber: 1 << 60, PageSize: 10}.Normalize()
	assert.Equal(t, MaxPageNumber, q.PageNumber)
	assert.Positive(t, q.Offset())

	q = ListQuery{PageNumber: math.MaxInt, PageSize: math.MaxInt}.Normalize()
	assert.Positive(t, q.Offset())
	assert.LessOrEqual(t, q.Offset(), math.MaxInt32)
}

func TestNewPagePagesCount(t *testing.T) {
	q := ListQuery{PageNumber: 2, PageSize: 10}.Normalize()
	page := NewPage[string](nil, q, 21)
	assert.Equal(t, 3, page.Pagination.PagesCount)
	assert.Equal(t, 21, page.Pagination.TotalCount)
	assert.NotNil(t, page.Items)

	empty := NewPage([]string{}, q, 0)
	assert.Equal(t, 0, empty.Pagination.PagesCount)
}

func TestDeviceMatches(t *testing.T) {
	iat := time.Unix(1700000000, 0)
	exp := iat.Add(time.Hour)
	claims := &RefreshClaims{UserID: "u1", DeviceID: "d1", RegisteredClaims: jwt.RegisteredClaims{
		ID:        "t1",
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}

	device := &Device{UserID: "u1", DeviceID: "d1", TokenID: "t1", IssuedAt: iat.UTC(), ExpiresAt: exp.UTC()}
	assert.True(t, device.Matches(claims))

	rotated := *device
	rotated.TokenID = "t2"
	assert.False(t, rotated.Matches(claims))

	later := *device
	later.IssuedAt = iat.Add(time.Second)
	assert.False(t, later.Matches(claims))

	var missing *Device
	assert.False(t, missing.Matches(claims))
}
