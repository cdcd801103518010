package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"thermo-server/internal/infra/mqtt"
	"time"
)

const (
	_minTemperature = 20.0
	_maxTemperature = 30.0
	_requestTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, reading map[string]any) error
}

// SampleTemperature draws a uniform temperature in [20, 30] rounded to two
// decimals.
func SampleTemperature(rng *rand.Rand) float64 {
	value := _minTemperature + rng.Float64()*(_maxTemperature-_minTemperature)
	return math.Round(value*100) / 100
}

func NewReading(sensorID string, temperature float64, at time.Time) map[string]any {
	return map[string]any{
		"temperature": temperature,
		"sensor_id":   sensorID,
		"timestamp":   at.UTC().Format(time.RFC3339),
	}
}

func NewHTTPPublisher(serverURL string, client *http.Client) *HTTPPublisher {
	if client == nil {
		client = &http.Client{Timeout: _requestTimeout}
	}
	return &HTTPPublisher{
		endpoint: strings.TrimSuffix(serverURL, "/") + "/temperature",
		client:   client,
	}
}

var _ Publisher = (*HTTPPublisher)(nil)

type HTTPPublisher struct {
	endpoint string
	client   *http.Client
}

func (p *HTTPPublisher) Publish(ctx context.Context, reading map[string]any) error {
	body, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshaling reading: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting reading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("posting reading: unexpected status %d", resp.StatusCode)
	}

	return nil
}

func NewMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

var _ Publisher = (*MQTTPublisher)(nil)

type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

func (p *MQTTPublisher) Publish(_ context.Context, reading map[string]any) error {
	return p.client.Publish(p.topic, reading)
}

type Simulator struct {
	publisher Publisher
	sensorID  string
	interval  time.Duration
	rng       *rand.Rand
	now       func() time.Time
}

func NewSimulator(publisher Publisher, sensorID string, interval time.Duration, rng *rand.Rand) *Simulator {
	return &Simulator{
		publisher: publisher,
		sensorID:  sensorID,
		interval:  interval,
		rng:       rng,
		now:       time.Now,
	}
}

// Run publishes one reading immediately and then one per interval until ctx
// is done. Failed publications are logged and skipped.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	temperature := SampleTemperature(s.rng)
	if err := s.publisher.Publish(ctx, NewReading(s.sensorID, temperature, s.now())); err != nil {
		slog.Warn("publishing reading", slog.Float64("temperature", temperature), slog.Any("error", err))
		return
	}
	slog.Info("reading published", slog.Float64("temperature", temperature))
}
