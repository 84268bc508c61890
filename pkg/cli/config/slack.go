package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/service/notify"
)

// Slack holds CLI flags for audit notification via Slack webhook
type Slack struct {
	webhookURL string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for credential audit notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("HOURBEAM_SLACK_WEBHOOK_URL"),
			Destination: &x.webhookURL,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("webhook", x.webhookURL != ""),
	)
}

// IsConfigured reports whether a webhook URL is set
func (x *Slack) IsConfigured() bool {
	return x.webhookURL != ""
}

// Configure returns the audit notifier. Without a webhook URL notifications
// are discarded.
func (x *Slack) Configure() (interfaces.AuditNotifier, error) {
	if x.webhookURL == "" {
		return &notify.Null{}, nil
	}
	return notify.NewSlackWebhook(x.webhookURL)
}
