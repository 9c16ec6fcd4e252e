package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lingua/cache"
	"lingua/metrics"

	"github.com/tidwall/gjson"
)

const (
	FeatureProfilePictureLookup = "enable_profile_picture_lookup"

	pictureCachePrefix = "profile_picture:"
)

// FeatureFlags 功能开关
type FeatureFlags interface {
	GetBoolSetting(key string, defaultValue bool) bool
}

// ProfilePictureService 按 World 用户名查询头像，结果跨请求缓存
type ProfilePictureService struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	ttl        time.Duration
	flags      FeatureFlags
}

func NewProfilePictureService(baseURL string, timeout time.Duration, c cache.Cache, ttl time.Duration, flags FeatureFlags) *ProfilePictureService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ProfilePictureService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		ttl:        ttl,
		flags:      flags,
	}
}

// Lookup 返回头像地址；用户名为空、未找到或功能关闭时返回空字符串
func (s *ProfilePictureService) Lookup(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil
	}
	if s.flags != nil && !s.flags.GetBoolSetting(FeatureProfilePictureLookup, true) {
		return "", nil
	}

	key := pictureCachePrefix + username
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			metrics.RecordPictureLookup("hit")
			return cached, nil
		}
	}

	pictureURL, err := s.fetch(ctx, username)
	if err != nil {
		metrics.RecordPictureLookup("error")
		return "", err
	}
	metrics.RecordPictureLookup("miss")

	// 只缓存命中的结果
	if pictureURL != "" && s.cache != nil {
		_ = s.cache.Set(ctx, key, pictureURL, s.ttl)
	}
	return pictureURL, nil
}

func (s *ProfilePictureService) fetch(ctx context.Context, username string) (string, error) {
	reqURL := s.baseURL + "/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch profile picture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("username api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if v := gjson.GetBytes(body, "minimized_profile_picture_url"); v.String() != "" {
		return v.String(), nil
	}
	return gjson.GetBytes(body, "profile_picture_url").String(), nil
}
