package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "access", cfg.JWT.RefreshSecret)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Cookie.Secure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "blogs", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/blogs?sslmode=disable", db.URL())
	assert.Contains(t, db.DSN(), "dbname=blogs")
}
