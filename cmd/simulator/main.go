package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"thermo-server/internal/infra/mqtt"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

func main() {
	slog.SetDefault(
		slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})).With("app", "thermo-simulator"),
	)

	var (
		mode      = pflag.String("mode", "http", "how readings are delivered: http or mqtt")
		serverURL = pflag.String("server-url", "http://localhost:5000", "thermo-server base URL (http mode)")
		broker    = pflag.String("broker", "tcp://localhost:1883", "MQTT broker (mqtt mode)")
		topic     = pflag.String("topic", "sensors/temperature", "MQTT topic (mqtt mode)")
		username  = pflag.String("username", "", "MQTT username (mqtt mode)")
		password  = pflag.String("password", "", "MQTT password (mqtt mode)")
		sensorID  = pflag.String("sensor-id", "simulator", "sensor id attached to every reading")
		interval  = pflag.Duration("interval", 5*time.Second, "time between readings")
	)
	pflag.Parse()

	slog.Info("simulator starting", slog.String("mode", *mode), slog.Duration("interval", *interval))

	var publisher Publisher
	switch *mode {
	case "http":
		publisher = NewHTTPPublisher(*serverURL, nil)
	case "mqtt":
		client, err := mqtt.NewSimpleClient(mqtt.SimpleClientOpts{
			Broker:   *broker,
			Username: *username,
			Password: *password, //pragma: allowlist secret
		})
		if err != nil {
			slog.Error("connecting to mqtt broker", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Disconnect()
		publisher = NewMQTTPublisher(client, *topic)
	default:
		slog.Error("unknown mode", slog.String("mode", *mode))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	NewSimulator(publisher, *sensorID, *interval, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))).Run(ctx)

	slog.Info("good bye!!!")
}
