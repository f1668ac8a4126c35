package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
	channel    string
}

// NewNotifier posts messages to a Slack incoming webhook. channel may be empty to use the
// webhook default.
func NewNotifier(webhookURL, channel string) interfaces.Notifier {
	return &notifier{webhookURL: webhookURL, channel: channel}
}

func (n *notifier) Notify(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    text,
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack message")
	}
	return nil
}
