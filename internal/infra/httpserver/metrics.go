package httpserver

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	_metricsNamespace = "thermo_server"
	_rootEndpoint     = "root"
	_idPlaceholder    = "_id"
)

var (
	// path segments that identify a resource rather than a route
	idRegex = regexp.MustCompile(`^([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|[0-9]+)$`)

	errHijackNotSupported = errors.New("underlying ResponseWriter does not support hijacking")
)

type httpMetrics struct {
	duration     metric.Float64Histogram
	total        metric.Int64Counter
	active       metric.Int64UpDownCounter
	responseSize metric.Int64Histogram
}

var (
	metricsMutex sync.Mutex
	instruments  *httpMetrics
)

// ResetMetricsForTesting forgets the instruments so the next middleware
// picks up the current meter provider.
func ResetMetricsForTesting() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	instruments = nil
}

func IsMetricsInitialized() bool {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	return instruments != nil
}

func loadMetrics() *httpMetrics {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if instruments != nil {
		return instruments
	}

	m, err := newHTTPMetrics(otel.GetMeterProvider().Meter("thermo-server"))
	if err != nil {
		slog.Error("creating http instruments, falling back to no-op", slog.Any("error", err))
		m, _ = newHTTPMetrics(noop.NewMeterProvider().Meter("thermo-server"))
	}

	instruments = m
	return instruments
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	duration, err := meter.Float64Histogram(
		_metricsNamespace+".http.request.duration.seconds",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter(
		_metricsNamespace+".http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		_metricsNamespace+".http.requests.active",
		metric.WithDescription("Number of HTTP requests currently being processed"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		_metricsNamespace+".http.response.size.bytes",
		metric.WithDescription("Size of HTTP response bodies"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		duration:     duration,
		total:        total,
		active:       active,
		responseSize: responseSize,
	}, nil
}

// MetricsMiddleware records latency, count, in-flight and response size per
// method and normalized endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	m := loadMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			routeAttrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.endpoint", normalizeEndpoint(r.URL.Path)),
			)

			m.active.Add(ctx, 1, routeAttrs)
			defer m.active.Add(ctx, -1, routeAttrs)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			statusAttrs := metric.WithAttributes(attribute.Int("http.status_code", wrapped.statusCode))
			m.duration.Record(ctx, time.Since(start).Seconds(), routeAttrs, statusAttrs)
			m.total.Add(ctx, 1, routeAttrs, statusAttrs)
			m.responseSize.Record(ctx, wrapped.bytesWritten, routeAttrs, statusAttrs)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackNotSupported
	}
	return hijacker.Hijack()
}

func normalizeEndpoint(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return _rootEndpoint
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if idRegex.MatchString(segment) {
			segments[i] = _idPlaceholder
		}
	}

	return strings.Join(segments, "/")
}
