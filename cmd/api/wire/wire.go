//go:build wireinject
// +build wireinject

package wire

import (
	"thermo-server/internal/infra/async"
	"thermo-server/internal/infra/mqtt"
	"thermo-server/internal/temperature/httpapi"
	"thermo-server/internal/temperature/persistence"
	"thermo-server/internal/temperature/usecases"
	"thermo-server/internal/temperature/workers"

	"github.com/google/wire"
)

var ReadingServiceSet = wire.NewSet(
	persistence.NewMemoryReadingStore,
	wire.Bind(new(usecases.ReadingStore), new(*persistence.MemoryReadingStore)),
	usecases.NewReadingService,
)

var AlertServiceSet = wire.NewSet(
	provideNotificationClient,
	provideEmailNotifier,
	wire.Bind(new(usecases.Notifier), new(*usecases.EmailNotifier)),
	usecases.NewAlertService,
	wire.Bind(new(usecases.AlertService), new(*usecases.SimpleAlertService)),
)

func InitializeReadingService(broker async.InternalBroker) (*usecases.SimpleReadingService, error) {
	wire.Build(ReadingServiceSet)
	return nil, nil
}

func InitializeTemperatureController(readings usecases.ReadingService) (*httpapi.TemperatureController, error) {
	wire.Build(
		provideAppConfig,
		AlertServiceSet,
		httpapi.NewTemperatureController,
	)
	return nil, nil
}

func InitializeTemperatureWebSocketController(readings usecases.ReadingService, broker async.InternalBroker) (*httpapi.TemperatureWebSocketController, error) {
	wire.Build(httpapi.NewTemperatureWebSocketController)
	return nil, nil
}

func InitializeMQTTIngestWorker(readings usecases.ReadingService) (*workers.MQTTIngestWorker, error) {
	wire.Build(
		provideAppConfig,
		provideMQTTClient,
		wire.Bind(new(mqtt.Client), new(*mqtt.SimpleClient)),
		provideIngestTopic,
		provideLogger,
		workers.NewMQTTIngestWorker,
	)
	return nil, nil
}
