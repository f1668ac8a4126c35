package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
)

const (
	headerSignature = "X-Meteo-Signature"
	headerEvent     = "X-Meteo-Event"
	headerDelivery  = "X-Meteo-Delivery"

	maxPayloadSize = 1 << 20
)

// WebhookHandler handles the sync hook
type WebhookHandler struct {
	secret    string
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		webhookUC: webhookUC,
	}
}

// Handle verifies the request and hands the event over. A dispatch is answered with
// 202 since the run continues in the background.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(body, r.Header.Get(headerSignature)) {
		logger.Warn("Invalid webhook signature")
		writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	event := &model.WebhookEvent{
		ID:         r.Header.Get(headerDelivery),
		Type:       parseEventType(r.Header.Get(headerEvent)),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, event); err != nil {
			logger.Error("Failed to parse webhook payload", "error", err)
			writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
			return
		}
	}

	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		logger.Error("Failed to process webhook event", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	status, code := "ignored", http.StatusOK
	if event.IsSupportedEvent() {
		status, code = "accepted", http.StatusAccepted
	}
	writeJSON(w, r, code, map[string]string{"status": status})
}

// parseEventType defaults to dispatch so that a bare POST starts a run
func parseEventType(s string) model.WebhookEventType {
	switch t := model.WebhookEventType(strings.ToLower(s)); t {
	case "", model.EventTypeDispatch:
		return model.EventTypeDispatch
	case model.EventTypePing:
		return t
	}
	return model.EventTypeUnknown
}

// verifySignature checks the HMAC-SHA256 of the payload, with or without the sha256= prefix
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
