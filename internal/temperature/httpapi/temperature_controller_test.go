package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/infra/httpserver"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/httpapi"
	"thermo-server/internal/temperature/persistence"
	"thermo-server/internal/temperature/usecases"
	usecases_mocks "thermo-server/test/unit/doubles/temperature/usecases"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("TemperatureController", func() {
	var (
		ctrl         *gomock.Controller
		mockReadings *usecases_mocks.MockReadingService
		mockAlerts   *usecases_mocks.MockAlertService
		router       *http.ServeMux
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockReadings = usecases_mocks.NewMockReadingService(ctrl)
		mockAlerts = usecases_mocks.NewMockAlertService(ctrl)

		router = http.NewServeMux()
		httpapi.NewTemperatureController(mockReadings, mockAlerts).AddRoutes(router)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Context("GET /temperature", func() {
		It("should return the sentinel before any write", func() {
			mockReadings.EXPECT().Latest(gomock.Any()).Return(nil, false)

			rec := do(http.MethodGet, "/temperature", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"temperature": "Not Available"}`))
		})

		It("should return the stored temperature", func() {
			mockReadings.EXPECT().Latest(gomock.Any()).Return(domain.Reading{"temperature": json.Number("23.5")}, true)

			rec := do(http.MethodGet, "/temperature", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"temperature": 23.5}`))
		})
	})

	Context("POST /temperature", func() {
		It("should record the whole payload and acknowledge", func() {
			mockReadings.EXPECT().
				Record(gomock.Any(), domain.Reading{"temperature": json.Number("23.5"), "sensor": "kitchen"}).
				Times(1)

			rec := do(http.MethodPost, "/temperature", `{"temperature": 23.5, "sensor": "kitchen"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "success"}`))
		})

		It("should accept payloads without a temperature field", func() {
			mockReadings.EXPECT().Record(gomock.Any(), domain.Reading{"humidity": json.Number("40")}).Times(1)

			rec := do(http.MethodPost, "/temperature", `{"humidity": 40}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		DescribeTable("rejecting bodies that are not JSON objects",
			func(body string) {
				mockReadings.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)

				rec := do(http.MethodPost, "/temperature", body)

				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(MatchJSON(`{"status": "error", "message": "request body must be a JSON object"}`))
			},
			Entry("empty", ""),
			Entry("malformed", `{"temperature":`),
			Entry("array", `[23.5]`),
			Entry("number", `23.5`),
		)
	})

	Context("POST /temperature/alert", func() {
		It("should answer ok within threshold", func() {
			request := domain.AlertRequest{Current: 20, Threshold: 25}
			mockAlerts.EXPECT().Evaluate(gomock.Any(), request).Return(domain.WithinThreshold(request), nil)

			rec := do(http.MethodPost, "/temperature/alert", `{"current_temperature": 20, "threshold_temperature": 25}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{
				"status": "ok",
				"message": "Temperature is within the threshold",
				"current_temperature": 20,
				"threshold_temperature": 25
			}`))
		})

		It("should answer alert_sent with the email response", func() {
			request := domain.AlertRequest{Current: 31, Threshold: 25}
			mockAlerts.EXPECT().
				Evaluate(gomock.Any(), request).
				Return(domain.ThresholdExceeded(request, domain.SentOutcome("msg-123")), nil)

			rec := do(http.MethodPost, "/temperature/alert", `{"current_temperature": 31, "threshold_temperature": 25}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{
				"status": "alert_sent",
				"message": "Temperature exceeded the threshold, alert email triggered",
				"current_temperature": 31,
				"threshold_temperature": 25,
				"email_response": {"status": "sent", "message_id": "msg-123"}
			}`))
		})

		It("should keep 200 when the notification failed", func() {
			request := domain.AlertRequest{Current: 31, Threshold: 25}
			mockAlerts.EXPECT().
				Evaluate(gomock.Any(), request).
				Return(domain.ThresholdExceeded(request, domain.FailedOutcome("provider returned 503")), nil)

			rec := do(http.MethodPost, "/temperature/alert", `{"current_temperature": 31, "threshold_temperature": 25}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("email_response", HaveKeyWithValue("status", "failed")))
		})

		It("should accept numeric strings", func() {
			request := domain.AlertRequest{Current: 31, Threshold: 25.5}
			mockAlerts.EXPECT().Evaluate(gomock.Any(), request).Return(domain.ThresholdExceeded(request, domain.SentOutcome("")), nil)

			rec := do(http.MethodPost, "/temperature/alert", `{"current_temperature": "31", "threshold_temperature": "25.5"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		DescribeTable("rejecting invalid alert requests without evaluating",
			func(body, message string) {
				mockAlerts.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Times(0)

				rec := do(http.MethodPost, "/temperature/alert", body)

				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(MatchJSON(`{"status": "error", "message": "` + message + `"}`))
			},
			Entry("missing threshold", `{"current_temperature": 20}`, "threshold_temperature is required"),
			Entry("missing current", `{"threshold_temperature": 25}`, "current_temperature is required"),
			Entry("null current", `{"current_temperature": null, "threshold_temperature": 25}`, "current_temperature is required"),
			Entry("non-numeric current", `{"current_temperature": "hot", "threshold_temperature": 25}`, "current_temperature must be a number"),
			Entry("boolean threshold", `{"current_temperature": 20, "threshold_temperature": true}`, "threshold_temperature must be a number"),
			Entry("empty body", ``, "request body must be a JSON object"),
			Entry("array body", `[31, 25]`, "request body must be a JSON object"),
		)

		It("should answer 500 with the raw error text on internal faults", func() {
			mockAlerts.EXPECT().
				Evaluate(gomock.Any(), gomock.Any()).
				Return(domain.AlertResult{}, &domain.InternalError{Op: "notify", Err: context.DeadlineExceeded})

			rec := do(http.MethodPost, "/temperature/alert", `{"current_temperature": 31, "threshold_temperature": 25}`)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "error", "message": "context deadline exceeded"}`))
		})

		It("should answer 413 for oversized bodies", func() {
			mockAlerts.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Times(0)

			body := `{"current_temperature": 31, "threshold_temperature": 25, "pad": "` + strings.Repeat("x", httpserver.MaxBodyBytes) + `"}`
			rec := do(http.MethodPost, "/temperature/alert", body)

			Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
		})
	})

	Context("with the real store", func() {
		It("should read back the last written temperature", func() {
			broker := async.NewLocalBroker()
			defer broker.Stop()

			readings := usecases.NewReadingService(persistence.NewMemoryReadingStore(), broker)
			router = http.NewServeMux()
			httpapi.NewTemperatureController(readings, mockAlerts).AddRoutes(router)

			Expect(do(http.MethodPost, "/temperature", `{"temperature": 19}`).Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodPost, "/temperature", `{"temperature": 23.5}`).Code).To(Equal(http.StatusOK))

			rec := do(http.MethodGet, "/temperature", "")
			Expect(rec.Body.String()).To(MatchJSON(`{"temperature": 23.5}`))
		})
	})
})
