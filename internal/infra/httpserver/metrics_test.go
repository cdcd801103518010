package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var _ = ginkgo.Describe("Metrics", func() {
	ginkgo.Context("MetricsMiddleware", func() {
		ginkgo.When("using metrics middleware", func() {
			ginkgo.It("should collect metrics correctly", func() {
				reader := metric.NewManualReader()
				provider := metric.NewMeterProvider(metric.WithReader(reader))
				otel.SetMeterProvider(provider)

				ResetMetricsForTesting()

				testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusCreated)
					w.Write([]byte("test response"))
				})

				handler := MetricsMiddleware()(testHandler)

				req := httptest.NewRequest(http.MethodPost, "/temperature", nil)
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))
				gomega.Expect(w.Body.String()).To(gomega.Equal("test response"))
				gomega.Expect(IsMetricsInitialized()).To(gomega.BeTrue())

				var collected metricdata.ResourceMetrics
				gomega.Expect(reader.Collect(context.Background(), &collected)).To(gomega.Succeed())

				names := []string{}
				for _, scope := range collected.ScopeMetrics {
					for _, m := range scope.Metrics {
						names = append(names, m.Name)
					}
				}
				gomega.Expect(names).To(gomega.ContainElements(
					"thermo_server.http.request.duration.seconds",
					"thermo_server.http.requests.total",
					"thermo_server.http.requests.active",
					"thermo_server.http.response.size.bytes",
				))
			})

			ginkgo.It("should count the bytes written", func() {
				recorder := httptest.NewRecorder()
				wrapped := &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}

				_, _ = wrapped.Write([]byte("21.5"))
				_, _ = wrapped.Write([]byte("C"))

				gomega.Expect(wrapped.bytesWritten).To(gomega.Equal(int64(5)))
			})
		})
	})

	ginkgo.Context("NormalizeEndpoint", func() {
		ginkgo.DescribeTable("normalizing endpoint from path",
			func(path, expected string) {
				gomega.Expect(normalizeEndpoint(path)).To(gomega.Equal(expected))
			},
			ginkgo.Entry("root path", "/", "root"),
			ginkgo.Entry("empty path", "", "root"),
			ginkgo.Entry("single segment", "/healthz", "/healthz"),
			ginkgo.Entry("nested endpoint", "/temperature/alert", "/temperature/alert"),
			ginkgo.Entry("trailing slash", "/temperature/", "/temperature"),
			ginkgo.Entry("websocket endpoint", "/ws/temperature", "/ws/temperature"),
			ginkgo.Entry("uuid segment", "/sensors/123e4567-e89b-12d3-a456-426614174000", "/sensors/_id"),
			ginkgo.Entry("numeric segments", "/sensors/12/readings/34", "/sensors/_id/readings/_id"),
			ginkgo.Entry("digits inside a word", "/v1/temperature", "/v1/temperature"),
		)
	})

	ginkgo.Context("ResponseWriter", func() {
		var (
			recorder      *httptest.ResponseRecorder
			wrappedWriter *responseWriter
		)

		ginkgo.BeforeEach(func() {
			recorder = httptest.NewRecorder()
			wrappedWriter = &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}
		})

		ginkgo.It("should handle WriteHeader correctly", func() {
			wrappedWriter.WriteHeader(http.StatusNotFound)
			gomega.Expect(wrappedWriter.statusCode).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should handle Write correctly", func() {
			_, err := wrappedWriter.Write([]byte("test"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(recorder.Body.String()).To(gomega.Equal("test"))
		})

		ginkgo.It("should implement http.Hijacker interface", func() {
			_, isHijacker := interface{}(wrappedWriter).(http.Hijacker)
			gomega.Expect(isHijacker).To(gomega.BeTrue())
		})

		ginkgo.It("should return error when hijacking is not supported", func() {
			_, _, err := wrappedWriter.Hijack()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("underlying ResponseWriter does not support hijacking"))
		})
	})
})
