package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lingua/metrics"
	"lingua/model"
)

const FeatureContactNotifications = "enable_contact_notifications"

// NotificationConfig 推送配置
type NotificationConfig struct {
	URL     string
	AppID   string
	Path    string // mini app 内跳转路径
	Timeout time.Duration
}

// NotificationService 通过外部推送接口通知用户
type NotificationService struct {
	cfg         NotificationConfig
	httpClient  *http.Client
	templateSvc *NotificationTemplateService
	flags       FeatureFlags
}

func NewNotificationService(cfg NotificationConfig, templateSvc *NotificationTemplateService, flags FeatureFlags) *NotificationService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.Path == "" {
		cfg.Path = "/home"
	}
	return &NotificationService{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: timeout},
		templateSvc: templateSvc,
		flags:       flags,
	}
}

// notificationPayload 推送接口请求体
type notificationPayload struct {
	AppID           string   `json:"app_id"`
	WalletAddresses []string `json:"wallet_addresses"`
	Title           string   `json:"title"`
	Message         string   `json:"message"`
	MiniAppPath     string   `json:"mini_app_path"`
}

// ContactNotificationsEnabled 新联系人自动通知是否开启
func (s *NotificationService) ContactNotificationsEnabled() bool {
	return s.flags == nil || s.flags.GetBoolSetting(FeatureContactNotifications, true)
}

// SendContactNotification 通知对方有人想和他练习语言
func (s *NotificationService) SendContactNotification(ctx context.Context, sender model.ProfileView, targetWallet string) error {
	targetWallet = strings.TrimSpace(targetWallet)
	if targetWallet == "" {
		return fmt.Errorf("%w: missing required field: wallet_address", ErrValidation)
	}
	if s.cfg.AppID == "" {
		return fmt.Errorf("%w: app not configured for notifications", ErrNotConfigured)
	}

	template, err := s.templateSvc.GetTemplate(ctx, TemplateNewContact)
	if err != nil {
		return err
	}
	vars := map[string]string{"sender_name": model.SenderName(sender)}

	payload := notificationPayload{
		AppID:           s.cfg.AppID,
		WalletAddresses: []string{targetWallet},
		Title:           s.templateSvc.RenderTemplate(template.Title, vars),
		Message:         s.templateSvc.RenderTemplate(template.ContentTemplate, vars),
		MiniAppPath:     url.QueryEscape(s.cfg.Path),
	}

	err = s.post(ctx, payload)
	metrics.RecordNotification(err == nil)
	return err
}

func (s *NotificationService) post(ctx context.Context, payload notificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &DispatchError{StatusCode: resp.StatusCode, Detail: string(detail)}
	}
	return nil
}

// DispatchError 推送接口返回非 2xx
type DispatchError struct {
	StatusCode int
	Detail     string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("failed to send notification: status %d: %s", e.StatusCode, e.Detail)
}
