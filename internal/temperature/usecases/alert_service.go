package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"thermo-server/internal/temperature/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	_alertSubject       = "Temperature Alert"
	_alertStatusError   = "error"
	_alertEvaluationKey = "thermo_server_alert_evaluations_total"
)

func NewAlertService(notifier Notifier) (*SimpleAlertService, error) {
	counter, err := otel.Meter("alert-service").Int64Counter(
		_alertEvaluationKey,
		metric.WithDescription("Total number of alert evaluations by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating alert evaluation counter: %w", err)
	}

	return &SimpleAlertService{
		notifier:    notifier,
		evaluations: counter,
	}, nil
}

var _ AlertService = (*SimpleAlertService)(nil)

type SimpleAlertService struct {
	notifier    Notifier
	evaluations metric.Int64Counter
}

// Evaluate compares the current temperature with the threshold and, only
// when it is strictly above, waits for one notification attempt.
func (s *SimpleAlertService) Evaluate(ctx context.Context, request domain.AlertRequest) (domain.AlertResult, error) {
	ctx, span := otel.Tracer("alert-service").Start(ctx, "evaluate-alert")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("temperature.current", request.Current),
		attribute.Float64("temperature.threshold", request.Threshold),
	)

	if !request.Exceeded() {
		s.record(ctx, string(domain.AlertStatusOK))
		return domain.WithinThreshold(request), nil
	}

	outcome, err := s.notify(ctx, request)
	if err != nil {
		span.RecordError(err)
		s.record(ctx, _alertStatusError)
		return domain.AlertResult{}, err
	}

	span.SetAttributes(attribute.String("notification.status", string(outcome.Status)))
	if !outcome.Sent() {
		slog.Warn("alert notification failed",
			slog.Float64("current_temperature", request.Current),
			slog.Float64("threshold_temperature", request.Threshold),
			slog.String("detail", outcome.Detail))
	}

	s.record(ctx, string(domain.AlertStatusSent))
	return domain.ThresholdExceeded(request, outcome), nil
}

func (s *SimpleAlertService) notify(ctx context.Context, request domain.AlertRequest) (outcome domain.NotificationOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.InternalError{Op: "notify", Err: fmt.Errorf("%v", r)}
		}
	}()

	subject, body := alertMessage(request)
	return s.notifier.Notify(ctx, subject, body), nil
}

func (s *SimpleAlertService) record(ctx context.Context, status string) {
	s.evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func alertMessage(request domain.AlertRequest) (string, string) {
	current := strconv.FormatFloat(request.Current, 'f', -1, 64)
	threshold := strconv.FormatFloat(request.Threshold, 'f', -1, 64)

	body := fmt.Sprintf("The current temperature (%s°C) has exceeded the threshold (%s°C).\n", current, threshold)
	body += "\nThis is an automated notification from Thermo Server.\n"

	return _alertSubject, body
}
