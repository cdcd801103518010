package internal_test

import (
	"encoding/json"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/httpapi/internal"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DTOs", func() {
	Context("ToTemperatureResponse", func() {
		It("should report the sentinel when unset", func() {
			Expect(internal.ToTemperatureResponse(nil, false).Temperature).To(Equal("Not Available"))
		})

		It("should report the stored temperature", func() {
			response := internal.ToTemperatureResponse(domain.Reading{"temperature": 23.5, "unit": "C"}, true)
			Expect(response.Temperature).To(Equal(23.5))
		})

		It("should report null when the reading has no temperature", func() {
			response := internal.ToTemperatureResponse(domain.Reading{"humidity": 40}, true)

			body, err := json.Marshal(response)
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{"temperature": null}`))
		})
	})

	Context("ToAlertResponse", func() {
		It("should omit the email response within threshold", func() {
			result := domain.WithinThreshold(domain.AlertRequest{Current: 20, Threshold: 25})

			body, err := json.Marshal(internal.ToAlertResponse(result))
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{
				"status": "ok",
				"message": "Temperature is within the threshold",
				"current_temperature": 20,
				"threshold_temperature": 25
			}`))
		})

		It("should embed a failed notification", func() {
			result := domain.ThresholdExceeded(
				domain.AlertRequest{Current: 31, Threshold: 25},
				domain.FailedOutcome("MailerSend API key is not configured"),
			)

			body, err := json.Marshal(internal.ToAlertResponse(result))
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{
				"status": "alert_sent",
				"message": "Temperature exceeded the threshold, alert email triggered",
				"current_temperature": 31,
				"threshold_temperature": 25,
				"email_response": {"status": "failed", "detail": "MailerSend API key is not configured"}
			}`))
		})
	})

	Context("NewReadingMessage", func() {
		It("should tag the reading with a UTC timestamp", func() {
			at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

			message := internal.NewReadingMessage(domain.Reading{"temperature": 21.0}, at)

			Expect(message.Type).To(Equal("reading"))
			Expect(message.Timestamp).To(Equal(at.UTC()))
			Expect(message.Data).To(HaveKeyWithValue("temperature", 21.0))
		})
	})
})
