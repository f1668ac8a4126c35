package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/meteo/pkg/controller/http"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/usecase"
	"github.com/m-mizutani/meteo/pkg/utils/async"
)

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		signature      string
		wantStatusCode int
	}{
		{
			name:           "Valid signature",
			payload:        `{"sender":"scheduler"}`,
			wantStatusCode: http.StatusAccepted,
		},
		{
			name:           "Valid signature without prefix",
			payload:        `{"sender":"scheduler"}`,
			signature:      generateSignature(testSecret, []byte(`{"sender":"scheduler"}`))[len("sha256="):],
			wantStatusCode: http.StatusAccepted,
		},
		{
			name:           "Invalid signature",
			payload:        `{"sender":"scheduler"}`,
			signature:      "sha256=invalid",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Signature of another secret",
			payload:        `{"sender":"scheduler"}`,
			signature:      generateSignature("other", []byte(`{"sender":"scheduler"}`)),
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			webhookUC := &mockWebhookUseCase{}
			handler := controller.NewWebhookHandler(testSecret, webhookUC)

			payload := []byte(tt.payload)
			signature := tt.signature
			if signature == "" {
				signature = generateSignature(testSecret, payload)
			}

			req := httptest.NewRequest(http.MethodPost, "/hooks/sync", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Meteo-Delivery", "test-delivery")
			req.Header.Set("X-Meteo-Signature", signature)

			w := httptest.NewRecorder()
			handler.Handle(w, req)
			gt.Equal(t, w.Code, tt.wantStatusCode)

			if tt.wantStatusCode != http.StatusAccepted {
				gt.Equal(t, len(webhookUC.events), 0)
			}
		})
	}

	t.Run("Missing signature", func(t *testing.T) {
		handler := controller.NewWebhookHandler(testSecret, &mockWebhookUseCase{})
		req := httptest.NewRequest(http.MethodPost, "/hooks/sync", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()
		handler.Handle(w, req)
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})
}

func TestWebhookHandler_EventParsing(t *testing.T) {
	tests := []struct {
		name           string
		eventType      string
		payload        string
		wantType       model.WebhookEventType
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:           "bare request dispatches",
			payload:        `{"sender":"cron","publish":true}`,
			wantType:       model.EventTypeDispatch,
			wantStatusCode: http.StatusAccepted,
			wantStatus:     "accepted",
		},
		{
			name:           "ping",
			eventType:      "ping",
			wantType:       model.EventTypePing,
			wantStatusCode: http.StatusOK,
			wantStatus:     "ignored",
		},
		{
			name:           "unknown event",
			eventType:      "push",
			payload:        `{}`,
			wantType:       model.EventTypeUnknown,
			wantStatusCode: http.StatusOK,
			wantStatus:     "ignored",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			webhookUC := &mockWebhookUseCase{}
			handler := controller.NewWebhookHandler(testSecret, webhookUC)

			payload := []byte(tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/hooks/sync", bytes.NewReader(payload))
			req.Header.Set("X-Meteo-Event", tt.eventType)
			req.Header.Set("X-Meteo-Delivery", "delivery-1")
			req.Header.Set("X-Meteo-Signature", generateSignature(testSecret, payload))

			w := httptest.NewRecorder()
			handler.Handle(w, req)
			gt.Equal(t, w.Code, tt.wantStatusCode)

			var response map[string]string
			gt.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			gt.Equal(t, response["status"], tt.wantStatus)

			gt.Equal(t, len(webhookUC.events), 1)
			event := webhookUC.events[0]
			gt.Equal(t, event.Type, tt.wantType)
			gt.Equal(t, event.ID, "delivery-1")
		})
	}

	t.Run("payload fields", func(t *testing.T) {
		webhookUC := &mockWebhookUseCase{}
		handler := controller.NewWebhookHandler(testSecret, webhookUC)

		payload := []byte(`{"sender":"cron","publish":true,"type":"ping"}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/sync", bytes.NewReader(payload))
		req.Header.Set("X-Meteo-Signature", generateSignature(testSecret, payload))

		w := httptest.NewRecorder()
		handler.Handle(w, req)
		gt.Equal(t, w.Code, http.StatusAccepted)

		event := webhookUC.events[0]
		gt.Equal(t, event.Sender, "cron")
		gt.True(t, event.Publish)
		gt.Equal(t, event.Type, model.EventTypeDispatch)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := controller.NewWebhookHandler(testSecret, &mockWebhookUseCase{})

		payload := []byte(`{"sender":`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/sync", bytes.NewReader(payload))
		req.Header.Set("X-Meteo-Signature", generateSignature(testSecret, payload))

		w := httptest.NewRecorder()
		handler.Handle(w, req)
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})
}

func TestWebhookHandler_Integration(t *testing.T) {
	syncUC := &mockSyncUseCase{}
	server := newTestServer(t, syncUC, usecase.NewWebhook(syncUC))

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	payload := []byte(`{"sender":"integration","publish":true}`)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/hooks/sync", bytes.NewReader(payload))
	gt.NoError(t, err)
	req.Header.Set("X-Meteo-Event", "dispatch")
	req.Header.Set("X-Meteo-Delivery", "integration-test")
	req.Header.Set("X-Meteo-Signature", generateSignature(testSecret, payload))

	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	defer func() {
		_ = resp.Body.Close() // Error ignored in test
	}()
	gt.Equal(t, resp.StatusCode, http.StatusAccepted)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	gt.NoError(t, async.Wait(ctx))

	gt.Equal(t, syncUC.Calls(), []model.SyncOptions{{
		Trigger: model.SyncTriggerWebhook,
		Publish: true,
	}})
}

func TestServer_HookDisabledWithoutSecret(t *testing.T) {
	server, err := controller.NewServer(context.Background(), nil, &mockSyncUseCase{}, &mockWebhookUseCase{})
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/hooks/sync", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	gt.Equal(t, w.Code, http.StatusNotFound)
}
