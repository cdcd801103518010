package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"thermo-server/internal/infra/httpserver"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/httpapi/internal"
	"thermo-server/internal/temperature/usecases"

	"go.opentelemetry.io/otel/attribute"
)

const (
	invalidBodyErrMessage  = "request body must be a JSON object"
	bodyTooLargeErrMessage = "request body is too large"
)

func NewTemperatureController(readings usecases.ReadingService, alerts usecases.AlertService) *TemperatureController {
	return &TemperatureController{
		readings: readings,
		alerts:   alerts,
	}
}

var _ httpserver.Controller = (*TemperatureController)(nil)

type TemperatureController struct {
	readings usecases.ReadingService
	alerts   usecases.AlertService
}

func (c *TemperatureController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /temperature", c.getTemperature())
	router.Handle("POST /temperature", c.postTemperature())
	router.Handle("POST /temperature/alert", c.evaluateAlert())
}

func (c *TemperatureController) getTemperature() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reading, ok := c.readings.Latest(r.Context())
		httpserver.GetSpanFromContext(r).SetAttributes(attribute.Bool("temperature.available", ok))

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToTemperatureResponse(reading, ok))
	}
}

func (c *TemperatureController) postTemperature() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeObject(w, r)
		if !ok {
			return
		}

		c.readings.Record(r.Context(), domain.Reading(body))

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.StatusResponse{Status: internal.StatusSuccess})
	}
}

func (c *TemperatureController) evaluateAlert() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeObject(w, r)
		if !ok {
			return
		}

		request, err := domain.ParseAlertRequest(body)
		if err != nil {
			replyWithDomainError(w, r, err)
			return
		}

		result, err := c.alerts.Evaluate(r.Context(), request)
		if err != nil {
			replyWithDomainError(w, r, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, internal.ToAlertResponse(result))
	}
}

func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := httpserver.DecodeJSONObject(r)
	if err == nil {
		return body, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpserver.ReplyWithError(w, http.StatusRequestEntityTooLarge, bodyTooLargeErrMessage)
		return nil, false
	}

	httpserver.ReplyWithError(w, http.StatusBadRequest, invalidBodyErrMessage)
	return nil, false
}

// replyWithDomainError maps validation errors to 400 and anything else to 500
// carrying the raw error text.
func replyWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	span := httpserver.GetSpanFromContext(r)
	span.RecordError(err)

	if domain.IsBadRequest(err) {
		httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Error("evaluating temperature alert",
		slog.String("request_id", r.Header.Get(httpserver.RequestIDHeader)),
		slog.Any("error", err))
	httpserver.ReplyWithError(w, http.StatusInternalServerError, err.Error())
}
