package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTruncater struct {
	calls int
	err   error
}

func (m *mockTruncater) Truncate(context.Context) error {
	m.calls++
	return m.err
}

func TestTestingServiceClearAll(t *testing.T) {
	repo := &mockTruncater{}
	store := newMemCache()
	store.values["blog-platform:blog:1"] = []byte(`{}`)
	svc := NewTestingService(repo, NewCacheService(store, nil, time.Minute, nil, true), nil)

	require.NoError(t, svc.ClearAll(context.Background()))
	assert.Equal(t, 1, repo.calls)
	assert.Empty(t, store.values)

	repo.err = errors.New("locked")
	assertStatus(t, svc.ClearAll(context.Background()), http.StatusInternalServerError)
}
