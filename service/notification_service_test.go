package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lingua/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushRecorder 模拟推送接口并记录请求体
type pushRecorder struct {
	status   int
	payloads []notificationPayload
}

func (p *pushRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload notificationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			p.payloads = append(p.payloads, payload)
		}
		status := p.status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newNotificationService(t *testing.T, url, appID string) *NotificationService {
	t.Helper()
	db := newTestDB(t)
	return NewNotificationService(NotificationConfig{
		URL:     url,
		AppID:   appID,
		Timeout: time.Second,
	}, NewNotificationTemplateService(db), nil)
}

func TestSendContactNotification_Payload(t *testing.T) {
	rec := &pushRecorder{}
	srv := rec.server(t)
	svc := newNotificationService(t, srv.URL, "app_123")

	sender := (&model.User{WalletAddress: walletA, Name: "Ana", Username: "ana"}).Profile()
	require.NoError(t, svc.SendContactNotification(context.Background(), sender, walletB))

	require.Len(t, rec.payloads, 1)
	got := rec.payloads[0]
	assert.Equal(t, "app_123", got.AppID)
	assert.Equal(t, []string{walletB}, got.WalletAddresses)
	assert.Equal(t, "💬 New Lingua message!", got.Title)
	assert.Equal(t, "Ana wants to practice languages with you! Check your message requests in World Chat.", got.Message)
	assert.Equal(t, "%2Fhome", got.MiniAppPath)
}

func TestSendContactNotification_SenderFallback(t *testing.T) {
	rec := &pushRecorder{}
	srv := rec.server(t)
	svc := newNotificationService(t, srv.URL, "app_123")
	ctx := context.Background()

	usernameOnly := (&model.User{Username: "ana_world"}).Profile()
	require.NoError(t, svc.SendContactNotification(ctx, usernameOnly, walletB))
	require.NoError(t, svc.SendContactNotification(ctx, nil, walletB))

	require.Len(t, rec.payloads, 2)
	assert.Contains(t, rec.payloads[0].Message, "ana_world wants")
	assert.Contains(t, rec.payloads[1].Message, "Someone wants")
}

func TestSendContactNotification_UsesStoredTemplate(t *testing.T) {
	rec := &pushRecorder{}
	srv := rec.server(t)
	db := newTestDB(t)
	templates := NewNotificationTemplateService(db)
	require.NoError(t, templates.InitDefaultTemplates(context.Background()))

	title := "Hola {{sender_name}}"
	_, err := templates.UpdateTemplate(context.Background(), TemplateNewContact, TemplateUpdate{Title: &title})
	require.NoError(t, err)

	svc := NewNotificationService(NotificationConfig{URL: srv.URL, AppID: "app"}, templates, nil)
	require.NoError(t, svc.SendContactNotification(context.Background(), (&model.User{Name: "Ana"}).Profile(), walletB))
	require.Len(t, rec.payloads, 1)
	assert.Equal(t, "Hola Ana", rec.payloads[0].Title)
}

func TestSendContactNotification_Errors(t *testing.T) {
	rec := &pushRecorder{status: http.StatusBadRequest}
	srv := rec.server(t)
	ctx := context.Background()

	err := newNotificationService(t, srv.URL, "").SendContactNotification(ctx, nil, walletB)
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, rec.payloads, "未配置 app id 时不请求接口")

	svc := newNotificationService(t, srv.URL, "app")
	err = svc.SendContactNotification(ctx, nil, "")
	require.ErrorIs(t, err, ErrValidation)

	err = svc.SendContactNotification(ctx, nil, walletB)
	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, http.StatusBadRequest, dispatchErr.StatusCode)
}

func TestContactNotificationsEnabled(t *testing.T) {
	on := NewNotificationService(NotificationConfig{}, nil, staticFlags{})
	assert.True(t, on.ContactNotificationsEnabled(), "未配置开关时默认开启")

	off := NewNotificationService(NotificationConfig{}, nil, staticFlags{FeatureContactNotifications: false})
	assert.False(t, off.ContactNotificationsEnabled())
}
