package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	CurrentTemperatureField   = "current_temperature"
	ThresholdTemperatureField = "threshold_temperature"
)

type AlertStatus string

const (
	AlertStatusOK   AlertStatus = "ok"
	AlertStatusSent AlertStatus = "alert_sent"
)

const (
	withinThresholdMessage = "Temperature is within the threshold"
	exceededMessage        = "Temperature exceeded the threshold, alert email triggered"
)

type AlertRequest struct {
	Current   float64
	Threshold float64
}

// Exceeded uses a strict comparison: a reading equal to the threshold is fine.
func (r AlertRequest) Exceeded() bool {
	return r.Current > r.Threshold
}

// ParseAlertRequest extracts the current and threshold temperatures from a
// decoded JSON object. JSON numbers and numeric strings are accepted.
func ParseAlertRequest(payload map[string]any) (AlertRequest, error) {
	if payload == nil {
		return AlertRequest{}, ErrInvalidBody
	}

	current, err := numberField(payload, CurrentTemperatureField)
	if err != nil {
		return AlertRequest{}, err
	}

	threshold, err := numberField(payload, ThresholdTemperatureField)
	if err != nil {
		return AlertRequest{}, err
	}

	return AlertRequest{Current: current, Threshold: threshold}, nil
}

func numberField(payload map[string]any, name string) (float64, error) {
	raw, ok := payload[name]
	if !ok || raw == nil {
		return 0, &ValidationError{Field: name, Reason: "is required"}
	}

	var (
		value float64
		err   error
	)
	switch v := raw.(type) {
	case float64:
		value = v
	case json.Number:
		value, err = v.Float64()
	case string:
		value, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	default:
		err = fmt.Errorf("unsupported type %T", raw)
	}

	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &ValidationError{Field: name, Reason: "must be a number"}
	}

	return value, nil
}

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// NotificationOutcome is the result of one delivery attempt. A failed
// outcome is data, not an error: it is reported inside a successful
// evaluation.
type NotificationOutcome struct {
	Status    NotificationStatus
	MessageID string
	Detail    string
}

func SentOutcome(messageID string) NotificationOutcome {
	return NotificationOutcome{Status: NotificationSent, MessageID: messageID}
}

func FailedOutcome(detail string) NotificationOutcome {
	return NotificationOutcome{Status: NotificationFailed, Detail: detail}
}

func (o NotificationOutcome) Sent() bool {
	return o.Status == NotificationSent
}

type AlertResult struct {
	Status       AlertStatus
	Message      string
	Request      AlertRequest
	Notification *NotificationOutcome
}

func WithinThreshold(request AlertRequest) AlertResult {
	return AlertResult{
		Status:  AlertStatusOK,
		Message: withinThresholdMessage,
		Request: request,
	}
}

func ThresholdExceeded(request AlertRequest, outcome NotificationOutcome) AlertResult {
	return AlertResult{
		Status:       AlertStatusSent,
		Message:      exceededMessage,
		Request:      request,
		Notification: &outcome,
	}
}
