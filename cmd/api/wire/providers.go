package wire

import (
	"fmt"
	"thermo-server/cmd/config"
	"thermo-server/internal/infra/mqtt"
	"thermo-server/internal/infra/notification"
	"thermo-server/internal/logger"
	"thermo-server/internal/temperature/usecases"

	"github.com/spf13/pflag"
)

func provideAppConfig() (config.AppConfig, error) {
	return config.LoadConfig(pflag.CommandLine)
}

func provideNotificationClient(cfg config.AppConfig) notification.NotificationClient {
	return notification.NewMailerSendClient(notification.MailerSendConfig{
		APIKey:    cfg.MailerSend.APIKey,
		FromEmail: cfg.MailerSend.FromEmail,
		FromName:  cfg.MailerSend.FromName,
		Timeout:   cfg.MailerSend.Timeout,
	})
}

func provideEmailNotifier(cfg config.AppConfig, client notification.NotificationClient) *usecases.EmailNotifier {
	return usecases.NewEmailNotifier(client, cfg.Alert.Recipient)
}

func provideMQTTClient(cfg config.AppConfig) (*mqtt.SimpleClient, error) {
	if !cfg.MQTT.Enabled() {
		return nil, fmt.Errorf("mqtt broker is not configured")
	}

	return mqtt.NewSimpleClient(mqtt.SimpleClientOpts{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password, //pragma: allowlist secret
	})
}

func provideIngestTopic(cfg config.AppConfig) string {
	return cfg.MQTT.Topic
}

func provideLogger(cfg config.AppConfig) (logger.Logger, error) {
	return logger.New(cfg.General.LogLevel)
}
