package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/infra/mqtt"
	"thermo-server/internal/logger"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/usecases"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultIngestTopic = "sensors/temperature"
	_ingestQoS         = 1
)

var ErrPayloadNotObject = errors.New("payload must be a JSON object")

func NewMQTTIngestWorker(client mqtt.Client, topic string, service usecases.ReadingService, log logger.Logger) *MQTTIngestWorker {
	if topic == "" {
		topic = DefaultIngestTopic
	}
	return &MQTTIngestWorker{
		client:  client,
		topic:   topic,
		service: service,
		log:     log,
	}
}

var _ async.Worker = (*MQTTIngestWorker)(nil)

// MQTTIngestWorker records every JSON object published on its topic as the
// latest reading, exactly as POST /temperature does.
type MQTTIngestWorker struct {
	client  mqtt.Client
	topic   string
	service usecases.ReadingService
	log     logger.Logger
}

func (w *MQTTIngestWorker) Run(ctx context.Context, done func()) {
	defer done()

	err := w.client.Subscribe(w.topic, _ingestQoS, func(_ mqtt.Client, msg mqtt.Message) {
		w.handle(ctx, msg)
	})
	if err != nil {
		w.log.Errorw("subscribing to readings topic", "topic", w.topic, "error", err)
		return
	}

	w.log.Infow("mqtt ingest worker started", "topic", w.topic)
	<-ctx.Done()
	w.log.Debugw("mqtt ingest worker context done", "topic", w.topic)
}

func (w *MQTTIngestWorker) Shutdown() {
	w.client.Disconnect()
	w.log.Debugw("mqtt ingest worker shutdown")
}

func (w *MQTTIngestWorker) handle(ctx context.Context, msg mqtt.Message) {
	defer msg.Ack()

	ctx, span := otel.Tracer("mqtt-ingest-worker").Start(ctx, "ingest-reading")
	defer span.End()
	span.SetAttributes(attribute.String("mqtt.topic", msg.Topic()))

	reading, err := decodeReading(msg.Payload())
	if err != nil {
		span.RecordError(err)
		w.log.Warnw("discarding mqtt message", "topic", msg.Topic(), "error", err)
		return
	}

	w.service.Record(ctx, reading)

	temperature, _ := reading.Temperature()
	w.log.Debugw("reading ingested", "topic", msg.Topic(), "temperature", temperature)
}

func decodeReading(payload []byte) (domain.Reading, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil || decoder.More() {
		return nil, ErrPayloadNotObject
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, ErrPayloadNotObject
	}
	return domain.Reading(object), nil
}
