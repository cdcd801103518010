package driver

import (
	"net/http/httptest"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/infra/httpserver"
	"thermo-server/internal/infra/notification"
	"thermo-server/internal/temperature/httpapi"
	"thermo-server/internal/temperature/persistence"
	"thermo-server/internal/temperature/usecases"
)

// LocalServer runs the full HTTP stack in process. The email client has no
// API key, so alerts above the threshold report a failed email response
// without reaching the network.
type LocalServer struct {
	*httptest.Server
	broker *async.LocalBroker
}

func StartLocalServer(recipient string) (*LocalServer, error) {
	broker := async.NewLocalBroker()
	readings := usecases.NewReadingService(persistence.NewMemoryReadingStore(), broker)

	client := notification.NewMailerSendClient(notification.MailerSendConfig{})
	alerts, err := usecases.NewAlertService(usecases.NewEmailNotifier(client, recipient))
	if err != nil {
		broker.Stop()
		return nil, err
	}

	server := httpserver.NewServer(
		httpserver.ServerConfig{},
		httpapi.NewTemperatureController(readings, alerts),
	)

	return &LocalServer{
		Server: httptest.NewServer(server.Handler()),
		broker: broker,
	}, nil
}

func (s *LocalServer) Close() {
	s.Server.Close()
	s.broker.Stop()
}
