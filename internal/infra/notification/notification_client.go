package notification

import (
	"context"
	"errors"
)

//go:generate mockgen -source=notification_client.go -destination=../../../test/unit/doubles/infra/notification/notification_client_mock.go -package=notification -mock_names=NotificationClient=MockNotificationClient

// NotificationClient defines the interface for sending notifications
type NotificationClient interface {
	// SendEmail delivers a single email and reports the provider receipt
	SendEmail(ctx context.Context, request EmailRequest) (EmailReceipt, error)
}

// EmailRequest represents the data needed to send an email notification
type EmailRequest struct {
	To      string
	Subject string
	Body    string
}

// EmailReceipt is what the provider answered for an accepted email
type EmailReceipt struct {
	MessageID  string
	StatusCode int
}

// ErrNotConfigured is returned without any network call when the provider
// credential is missing.
var ErrNotConfigured = errors.New("email provider API key is not configured")

// NotificationError represents an error that occurred during notification sending
type NotificationError struct {
	Message string
	Err     error
}

func (e *NotificationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
