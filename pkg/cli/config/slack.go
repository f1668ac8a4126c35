package config

import (
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds the run notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook announcing sync runs, disabled when empty",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("METEO_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Channel overriding the webhook default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("METEO_SLACK_CHANNEL"),
		},
	}
}

// NewNotifier returns nil when no webhook is configured
func (c *Slack) NewNotifier() interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(c.WebhookURL, c.Channel)
}
