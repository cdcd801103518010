package usecases

import (
	"context"
	"log/slog"
	"thermo-server/internal/infra/notification"
	"thermo-server/internal/temperature/domain"
)

const _recipientNotConfigured = "alert recipient is not configured"

func NewEmailNotifier(client notification.NotificationClient, recipient string) *EmailNotifier {
	return &EmailNotifier{
		client:    client,
		recipient: recipient,
	}
}

var _ Notifier = (*EmailNotifier)(nil)

// EmailNotifier sends alerts to one fixed recipient.
type EmailNotifier struct {
	client    notification.NotificationClient
	recipient string
}

func (n *EmailNotifier) Notify(ctx context.Context, subject, body string) domain.NotificationOutcome {
	if n.recipient == "" {
		slog.Warn("skipping alert email", slog.String("reason", _recipientNotConfigured))
		return domain.FailedOutcome(_recipientNotConfigured)
	}

	receipt, err := n.client.SendEmail(ctx, notification.EmailRequest{
		To:      n.recipient,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		slog.Error("failed to send alert email",
			slog.String("recipient", n.recipient),
			slog.Any("error", err))
		return domain.FailedOutcome(err.Error())
	}

	slog.Info("alert email sent",
		slog.String("recipient", n.recipient),
		slog.String("message_id", receipt.MessageID))

	return domain.SentOutcome(receipt.MessageID)
}
