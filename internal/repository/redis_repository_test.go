package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
)

type fakeRedis struct {
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
	err     error

	failExpire bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	f.expires[key] = ttl
	return redis.NewStatusResult("OK", f.err)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func (f *fakeRedis) Keys(_ context.Context, pattern string) *redis.StringSliceCmd {
	if f.err != nil {
		return redis.NewStringSliceResult(nil, f.err)
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewStringSliceResult(keys, nil)
}

// fakePipe records commands queued inside TxPipelined. Only the methods the
// repositories call are implemented.
type fakePipe struct {
	redis.Pipeliner
	f    *fakeRedis
	cmds []redis.Cmder
}

func (p *fakePipe) Incr(_ context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntResult(0, nil)
	if p.f.err == nil {
		p.f.counts[key]++
		cmd = redis.NewIntResult(p.f.counts[key], nil)
	}
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakePipe) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	set := false
	if _, ok := p.f.expires[key]; !ok && p.f.err == nil && !p.f.failExpire {
		p.f.expires[key] = ttl
		set = true
	}
	cmd := redis.NewBoolResult(set, nil)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (f *fakeRedis) TxPipelined(_ context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	pipe := &fakePipe{f: f}
	if err := fn(pipe); err != nil {
		return nil, err
	}
	if f.err != nil {
		return pipe.cmds, f.err
	}
	return pipe.cmds, nil
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	repo := NewCacheRepository(fake)
	ctx := context.Background()

	var out map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "k", map[string]string{"name": "Go"}, time.Minute))
	require.NoError(t, repo.Get(ctx, "k", &out))
	assert.Equal(t, "Go", out["name"])
	assert.Equal(t, time.Minute, fake.expires["k"])

	require.NoError(t, repo.Delete(ctx, "k"))
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteMatching(t *testing.T) {
	fake := newFakeRedis()
	repo := NewCacheRepository(fake)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "blog-platform:blog:1", "a", time.Minute))
	require.NoError(t, repo.Set(ctx, "blog-platform:blog:2", "b", time.Minute))
	require.NoError(t, repo.Set(ctx, "blog-platform:other", "c", time.Minute))

	require.NoError(t, repo.DeleteMatching(ctx, "blog-platform:blog:*"))
	assert.Len(t, fake.values, 1)
	assert.Contains(t, fake.values, "blog-platform:other")
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var out string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", "v", time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
}

func TestCacheRepositoryBackendError(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	repo := NewCacheRepository(fake)

	var out string
	err := repo.Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestRateLimitHit(t *testing.T) {
	fake := newFakeRedis()
	repo := NewRateLimitRepository(fake)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Hit(ctx, "rl:ip:/auth/login", 10*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 10*time.Second, fake.expires["rl:ip:/auth/login"])

	fake.err = errors.New("down")
	_, err := repo.Hit(ctx, "rl:ip:/auth/login", 10*time.Second)
	assert.Error(t, err)
}

func TestRateLimitHitSetsMissingTTLOnLaterHit(t *testing.T) {
	fake := newFakeRedis()
	fake.failExpire = true
	repo := NewRateLimitRepository(fake)
	ctx := context.Background()

	_, err := repo.Hit(ctx, "rl:ip:/auth/login", 10*time.Second)
	require.NoError(t, err)
	assert.NotContains(t, fake.expires, "rl:ip:/auth/login")

	fake.failExpire = false
	got, err := repo.Hit(ctx, "rl:ip:/auth/login", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
	assert.Equal(t, 10*time.Second, fake.expires["rl:ip:/auth/login"])
}
