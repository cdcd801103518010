package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"thermo-server/cmd/api/wire"
	"thermo-server/cmd/config"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/infra/httpserver"
	"thermo-server/internal/infra/node"
	"thermo-server/internal/temperature/httpapi"
	"thermo-server/internal/temperature/usecases"

	"github.com/spf13/pflag"
)

var (
	logLevelMapping = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

func main() {
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	appConfig, err := config.LoadConfig(pflag.CommandLine)
	if err != nil {
		slog.Error("loading config", slog.Any("error", err))
		os.Exit(1)
	}

	level := logLevelMapping[appConfig.General.LogLevel]
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: level, ReplaceAttr: slogReplaceAttr})
	handler := baseHandler.WithAttrs([]slog.Attr{slog.String("version", node.Version)})
	slog.SetDefault(slog.New(handler))
	slog.Info("🌡️ thermo-server is initializing")
	slog.Debug("config loaded",
		slog.Int("port", appConfig.Server.Port),
		slog.Bool("email_configured", appConfig.MailerSend.Configured()),
		slog.Bool("alert_recipient_configured", appConfig.Alert.Recipient != ""),
		slog.Bool("mqtt_enabled", appConfig.MQTT.Enabled()))

	if !appConfig.MailerSend.Configured() {
		slog.Warn("mailersend api key is not set, alert emails will be reported as failed")
	}

	shutdownOtel, err := otelStart(context.Background())
	if err != nil {
		slog.Error("starting OTel providers", slog.Any("error", err))
		os.Exit(1)
	}

	internalBroker := async.NewLocalBroker()
	readings := handleWireInjector(wire.InitializeReadingService(internalBroker)).(*usecases.SimpleReadingService)
	temperatureController := handleWireInjector(wire.InitializeTemperatureController(readings)).(*httpapi.TemperatureController)
	streamController := handleWireInjector(wire.InitializeTemperatureWebSocketController(readings, internalBroker)).(*httpapi.TemperatureWebSocketController)

	httpServer := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:           appConfig.Server.Port,
			AllowedOrigins: appConfig.Server.AllowedOrigins,
		},
		temperatureController,
		streamController,
	)

	appCtx, cancelFn := context.WithCancel(context.Background())
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Run()
	}()

	var wg sync.WaitGroup
	var workers []async.Worker
	if appConfig.MQTT.Enabled() {
		worker := handleWireInjector(wire.InitializeMQTTIngestWorker(readings)).(async.Worker)
		workers = append(workers, worker)
		wg.Add(1)
		go worker.Run(appCtx, wg.Done)
	}

	signalChannel := make(chan os.Signal, 2)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-signalChannel:
	case err := <-serverErrors:
		if err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
			exitCode = 1
		}
	}

	streamController.Shutdown()
	httpServer.Shutdown()
	cancelFn()
	for _, worker := range workers {
		worker.Shutdown()
	}
	wg.Wait()
	internalBroker.Stop()

	if err := shutdownOtel(); err != nil {
		slog.Warn("shutting down OTel providers", slog.Any("error", err))
	}

	slog.Info("good bye!!!")
	os.Exit(exitCode)
}

func slogReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
		return slog.Any(a.Key, source)
	}
	return a
}

func handleWireInjector(value any, err error) any {
	if err != nil {
		panic(err)
	}

	return value
}
