package usecases

import (
	"context"
	"thermo-server/internal/temperature/domain"
)

//go:generate mockgen -source=./api.go -destination=../../../test/unit/doubles/temperature/usecases/api_mock.go -package=usecases

// ReadingStore holds at most one reading. The last write wins.
type ReadingStore interface {
	Write(context.Context, domain.Reading)
	Read(context.Context) (domain.Reading, bool)
}

type ReadingService interface {
	Record(context.Context, domain.Reading)
	Latest(context.Context) (domain.Reading, bool)
}

type AlertService interface {
	Evaluate(context.Context, domain.AlertRequest) (domain.AlertResult, error)
}

// Notifier delivers one alert message. Delivery problems are reported in
// the outcome, never as an error.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) domain.NotificationOutcome
}
