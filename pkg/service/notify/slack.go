package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// notableKinds are the audit kinds worth pinging a channel about. Routine
// refreshes and connects stay in the audit trail only.
var notableKinds = map[types.AuditKind]bool{
	types.AuditKindIdentityMismatch: true,
	types.AuditKindRefreshFailed:    true,
	types.AuditKindLegacyFallback:   true,
}

// SlackWebhook posts notable audit records to a Slack incoming webhook. It
// implements interfaces.AuditNotifier.
type SlackWebhook struct {
	webhookURL string
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

var _ interfaces.AuditNotifier = &SlackWebhook{}

// SlackOption is a functional option for SlackWebhook
type SlackOption func(*SlackWebhook)

// WithPostFunc overrides the webhook transport (tests)
func WithPostFunc(post func(ctx context.Context, url string, msg *slack.WebhookMessage) error) SlackOption {
	return func(x *SlackWebhook) {
		x.post = post
	}
}

// NewSlackWebhook creates a Slack webhook notifier
func NewSlackWebhook(webhookURL string, opts ...SlackOption) (*SlackWebhook, error) {
	if webhookURL == "" {
		return nil, goerr.New("Slack webhook URL is required")
	}

	x := &SlackWebhook{
		webhookURL: webhookURL,
		post:       slack.PostWebhookContext,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// NotifyAudit posts the record to the webhook if its kind is notable
func (x *SlackWebhook) NotifyAudit(ctx context.Context, record *model.AuditRecord) error {
	if !notableKinds[record.Kind] {
		return nil
	}

	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: colorFor(record.Kind),
				Title: titleFor(record.Kind),
				Fields: []slack.AttachmentField{
					{Title: "User", Value: record.UserID.String(), Short: true},
					{Title: "Kind", Value: record.Kind.String(), Short: true},
					{Title: "Detail", Value: record.Detail},
				},
				Footer: fmt.Sprintf("audit %s", record.ID),
				Ts:     jsonNumber(record.CreatedAt.Unix()),
			},
		},
	}

	if err := x.post(ctx, x.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post audit notification",
			goerr.V("audit_id", record.ID), goerr.V("kind", record.Kind))
	}
	return nil
}

func jsonNumber(v int64) json.Number {
	return json.Number(strconv.FormatInt(v, 10))
}

func colorFor(kind types.AuditKind) string {
	switch kind {
	case types.AuditKindIdentityMismatch:
		return "danger"
	case types.AuditKindRefreshFailed:
		return "warning"
	default:
		return "#439FE0"
	}
}

func titleFor(kind types.AuditKind) string {
	switch kind {
	case types.AuditKindIdentityMismatch:
		return "Identity mismatch blocked a timesheet write"
	case types.AuditKindRefreshFailed:
		return "Token refresh failed"
	case types.AuditKindLegacyFallback:
		return "Legacy token used without identity guarantee"
	default:
		return "Credential audit event"
	}
}

// Null is an AuditNotifier that discards everything. Used when no webhook is
// configured.
type Null struct{}

var _ interfaces.AuditNotifier = Null{}

// NotifyAudit does nothing
func (Null) NotifyAudit(ctx context.Context, record *model.AuditRecord) error {
	return nil
}
