package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lingua/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFlags map[string]bool

func (f staticFlags) GetBoolSetting(key string, defaultValue bool) bool {
	if v, ok := f[key]; ok {
		return v
	}
	return defaultValue
}

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (brokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("cache down")
}

// newUsernameAPI 模拟用户名接口
func newUsernameAPI(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ana":
			_, _ = w.Write([]byte(`{"username":"ana","profile_picture_url":"https://cdn/ana-full.png","minimized_profile_picture_url":"https://cdn/ana-min.png"}`))
		case "/bob":
			_, _ = w.Write([]byte(`{"username":"bob","profile_picture_url":"https://cdn/bob-full.png"}`))
		case "/nopic":
			_, _ = w.Write([]byte(`{"username":"nopic"}`))
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProfilePictureLookup_PrefersMinimized(t *testing.T) {
	var hits int32
	srv := newUsernameAPI(t, &hits)
	svc := NewProfilePictureService(srv.URL+"/", time.Second, cache.NewMemoryCache(10), time.Hour, nil)
	ctx := context.Background()

	url, err := svc.Lookup(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/ana-min.png", url)

	url, err = svc.Lookup(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/bob-full.png", url)
}

func TestProfilePictureLookup_CachesHitsOnly(t *testing.T) {
	var hits int32
	srv := newUsernameAPI(t, &hits)
	mem := cache.NewMemoryCache(10)
	svc := NewProfilePictureService(srv.URL, time.Second, mem, time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		url, err := svc.Lookup(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/ana-min.png", url)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "命中后应走缓存")

	for i := 0; i < 2; i++ {
		url, err := svc.Lookup(ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, url)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "未找到的结果不缓存")

	url, err := svc.Lookup(ctx, "nopic")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Equal(t, 1, mem.Len())
}

func TestProfilePictureLookup_Errors(t *testing.T) {
	var hits int32
	srv := newUsernameAPI(t, &hits)
	svc := NewProfilePictureService(srv.URL, time.Second, cache.NewMemoryCache(10), time.Hour, nil)

	_, err := svc.Lookup(context.Background(), "broken")
	require.Error(t, err)

	url, err := svc.Lookup(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "空用户名不请求接口")
}

func TestProfilePictureLookup_CacheFailureFallsThrough(t *testing.T) {
	var hits int32
	srv := newUsernameAPI(t, &hits)
	svc := NewProfilePictureService(srv.URL, time.Second, brokenCache{}, time.Hour, nil)

	url, err := svc.Lookup(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/ana-min.png", url)
}

func TestProfilePictureLookup_DisabledByFlag(t *testing.T) {
	var hits int32
	srv := newUsernameAPI(t, &hits)
	flags := staticFlags{FeatureProfilePictureLookup: false}
	svc := NewProfilePictureService(srv.URL, time.Second, nil, time.Hour, flags)

	url, err := svc.Lookup(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Zero(t, atomic.LoadInt32(&hits))
}
