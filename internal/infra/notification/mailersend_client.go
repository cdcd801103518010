package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/mailersend/mailersend-go"
)

const (
	_defaultSendTimeout = 10 * time.Second
	_messageIDHeader    = "X-Message-Id"
)

// emailAPI is the part of the MailerSend SDK the client needs
type emailAPI interface {
	NewMessage() *mailersend.Message
	Send(ctx context.Context, message *mailersend.Message) (*mailersend.Response, error)
}

// MailerSendClient implements NotificationClient using MailerSend API
type MailerSendClient struct {
	api       emailAPI
	apiKey    string
	fromEmail string
	fromName  string
	timeout   time.Duration
}

// MailerSendConfig holds configuration for MailerSend client
type MailerSendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

var _ NotificationClient = (*MailerSendClient)(nil)

// NewMailerSendClient creates a new MailerSend client. An empty API key
// yields a client that refuses to send.
func NewMailerSendClient(config MailerSendConfig) *MailerSendClient {
	return newMailerSendClient(mailersend.NewMailersend(config.APIKey).Email, config)
}

func newMailerSendClient(api emailAPI, config MailerSendConfig) *MailerSendClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = _defaultSendTimeout
	}

	return &MailerSendClient{
		api:       api,
		apiKey:    config.APIKey,
		fromEmail: config.FromEmail,
		fromName:  config.FromName,
		timeout:   timeout,
	}
}

// SendEmail sends one email. There is no retry: a failure is reported to
// the caller as is.
func (c *MailerSendClient) SendEmail(ctx context.Context, request EmailRequest) (EmailReceipt, error) {
	if c.apiKey == "" {
		return EmailReceipt{}, &NotificationError{Message: "MailerSend client unavailable", Err: ErrNotConfigured}
	}

	message := c.api.NewMessage()
	message.SetFrom(mailersend.From{
		Email: c.fromEmail,
		Name:  c.fromName,
	})
	message.SetRecipients([]mailersend.Recipient{
		{
			Email: request.To,
		},
	})
	message.SetSubject(request.Subject)
	message.SetText(request.Body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.api.Send(ctx, message)
	if err != nil {
		return EmailReceipt{}, &NotificationError{Message: "MailerSend API error", Err: err}
	}

	receipt := EmailReceipt{}
	if response != nil && response.Response != nil {
		receipt.StatusCode = response.StatusCode
		receipt.MessageID = response.Header.Get(_messageIDHeader)
	}

	slog.Debug("email accepted by MailerSend",
		slog.String("message_id", receipt.MessageID),
		slog.Int("status_code", receipt.StatusCode))

	return receipt, nil
}
