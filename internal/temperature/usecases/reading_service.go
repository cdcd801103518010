package usecases

import (
	"context"
	"errors"
	"log/slog"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/temperature/domain"
)

const (
	ReadingsTopic        async.BrokerTopicName = "temperature.readings"
	ReadingRecordedEvent                       = "reading_recorded"
)

func NewReadingService(store ReadingStore, broker async.InternalBroker) *SimpleReadingService {
	return &SimpleReadingService{
		store:  store,
		broker: broker,
	}
}

var _ ReadingService = (*SimpleReadingService)(nil)

type SimpleReadingService struct {
	store  ReadingStore
	broker async.InternalBroker
}

// Record replaces the stored reading and announces it to live subscribers.
func (s *SimpleReadingService) Record(ctx context.Context, reading domain.Reading) {
	s.store.Write(ctx, reading)

	temperature, _ := reading.Temperature()
	slog.Debug("reading recorded", slog.Any("temperature", temperature))

	err := s.broker.Publish(ctx, ReadingsTopic, async.BrokerMessage{
		Event: ReadingRecordedEvent,
		Value: reading.Clone(),
	})
	if err != nil && !errors.Is(err, async.ErrTopicNotFound) {
		slog.Warn("publishing reading", slog.Any("error", err))
	}
}

func (s *SimpleReadingService) Latest(ctx context.Context) (domain.Reading, bool) {
	return s.store.Read(ctx)
}
