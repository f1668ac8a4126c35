package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	// EventTypeDispatch asks for an immediate data preparation run
	EventTypeDispatch WebhookEventType = "dispatch"
	// EventTypePing only checks that the hook is reachable
	EventTypePing    WebhookEventType = "ping"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a request received on the sync hook
type WebhookEvent struct {
	ID         string           `json:"-"` // Retrieved from X-Meteo-Delivery header
	Type       WebhookEventType `json:"-"` // Retrieved from X-Meteo-Event header
	Sender     string           `json:"sender"`
	Publish    bool             `json:"publish"` // Commit and push the reports after the run
	ReceivedAt time.Time        `json:"-"`
	RawPayload []byte           `json:"-"`
}

// IsSupportedEvent checks if the event starts a run
func (e *WebhookEvent) IsSupportedEvent() bool {
	return e.Type == EventTypeDispatch
}
