package internal

import (
	"thermo-server/internal/temperature/domain"
	"time"
)

const (
	StatusSuccess      = "success"
	ReadingMessageType = "reading"
)

type TemperatureResponse struct {
	Temperature any `json:"temperature"`
}

// ToTemperatureResponse reports the temperature field of the stored reading,
// or the unavailable sentinel when nothing was stored yet.
func ToTemperatureResponse(reading domain.Reading, ok bool) TemperatureResponse {
	if !ok {
		return TemperatureResponse{Temperature: domain.UnavailableTemperature}
	}
	temperature, _ := reading.Temperature()
	return TemperatureResponse{Temperature: temperature}
}

type StatusResponse struct {
	Status string `json:"status"`
}

type EmailResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type AlertResponse struct {
	Status               string         `json:"status"`
	Message              string         `json:"message"`
	CurrentTemperature   float64        `json:"current_temperature"`
	ThresholdTemperature float64        `json:"threshold_temperature"`
	EmailResponse        *EmailResponse `json:"email_response,omitempty"`
}

func ToAlertResponse(result domain.AlertResult) AlertResponse {
	response := AlertResponse{
		Status:               string(result.Status),
		Message:              result.Message,
		CurrentTemperature:   result.Request.Current,
		ThresholdTemperature: result.Request.Threshold,
	}

	if result.Notification != nil {
		response.EmailResponse = &EmailResponse{
			Status:    string(result.Notification.Status),
			MessageID: result.Notification.MessageID,
			Detail:    result.Notification.Detail,
		}
	}

	return response
}

type ReadingMessage struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      domain.Reading `json:"data"`
}

func NewReadingMessage(reading domain.Reading, at time.Time) ReadingMessage {
	return ReadingMessage{
		Type:      ReadingMessageType,
		Timestamp: at.UTC(),
		Data:      reading,
	}
}
