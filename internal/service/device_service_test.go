package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

func newDeviceFixture(t *testing.T) (*authFixture, *DeviceService) {
	t.Helper()
	f := newAuthFixture(t)
	return f, NewDeviceService(f.svc, f.sessions, f.audit, nil)
}

func TestDeviceListAndDeleteOthers(t *testing.T) {
	f, svc := newDeviceFixture(t)
	f.seedUser(t, "alice", "alice@example.com", "secret1")
	ctx := context.Background()

	current := f.login(t, "alice", "secret1", "")
	f.now = f.now.Add(time.Second)
	f.login(t, "alice", "secret1", "")
	f.now = f.now.Add(time.Second)
	f.login(t, "alice", "secret1", "")

	views, err := svc.List(ctx, current.RefreshToken)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.True(t, views[0].LastActiveDate.After(views[2].LastActiveDate))

	require.NoError(t, svc.DeleteOthers(ctx, current.RefreshToken))
	views, err = svc.List(ctx, current.RefreshToken)
	require.NoError(t, err)
	require.Len(t, views, 1)

	claims, err := f.svc.tokens.DecodeRefreshToken(current.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.DeviceID, views[0].DeviceID)
}

func TestDeviceDeleteAuthorization(t *testing.T) {
	f, svc := newDeviceFixture(t)
	f.seedUser(t, "alice", "alice@example.com", "secret1")
	f.seedUser(t, "bob", "bob@example.com", "secret1")
	ctx := context.Background()

	aliceA := f.login(t, "alice", "secret1", "")
	aliceB := f.login(t, "alice", "secret1", "")
	bob := f.login(t, "bob", "secret1", "")

	bobClaims, err := f.svc.tokens.DecodeRefreshToken(bob.RefreshToken)
	require.NoError(t, err)
	aliceBClaims, err := f.svc.tokens.DecodeRefreshToken(aliceB.RefreshToken)
	require.NoError(t, err)

	assertStatus(t, svc.Delete(ctx, aliceA.RefreshToken, bobClaims.DeviceID), http.StatusForbidden)
	assertStatus(t, svc.Delete(ctx, aliceA.RefreshToken, "missing-device"), http.StatusNotFound)
	assertStatus(t, svc.Delete(ctx, "bogus", aliceBClaims.DeviceID), http.StatusUnauthorized)

	require.NoError(t, svc.Delete(ctx, aliceA.RefreshToken, aliceBClaims.DeviceID))
	_, err = f.svc.Refresh(ctx, models.RefreshRequest{RefreshToken: aliceB.RefreshToken})
	assertStatus(t, err, http.StatusUnauthorized)

	last := f.audit.logs[len(f.audit.logs)-1]
	assert.Equal(t, models.AuditActionDeviceRevoke, last.Action)
}
