package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/httpapi"
	"thermo-server/internal/temperature/persistence"
	"thermo-server/internal/temperature/usecases"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type readingFrame struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

var _ = Describe("TemperatureWebSocketController", func() {
	var (
		broker     *async.LocalBroker
		readings   *usecases.SimpleReadingService
		controller *httpapi.TemperatureWebSocketController
		server     *httptest.Server
		wsURL      string
	)

	dial := func() *websocket.Conn {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusSwitchingProtocols))
		DeferCleanup(conn.Close)
		return conn
	}

	readFrame := func(conn *websocket.Conn) readingFrame {
		var frame readingFrame
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		Expect(conn.ReadJSON(&frame)).To(Succeed())
		return frame
	}

	BeforeEach(func() {
		broker = async.NewLocalBroker()
		readings = usecases.NewReadingService(persistence.NewMemoryReadingStore(), broker)
		controller = httpapi.NewTemperatureWebSocketController(readings, broker)

		router := http.NewServeMux()
		controller.AddRoutes(router)
		server = httptest.NewServer(router)
		wsURL = "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/temperature"
	})

	AfterEach(func() {
		controller.Shutdown()
		server.Close()
		broker.Stop()
	})

	It("should send the latest reading on connect", func() {
		readings.Record(context.Background(), domain.Reading{"temperature": 22.0})

		conn := dial()

		frame := readFrame(conn)
		Expect(frame.Type).To(Equal("reading"))
		Expect(frame.Data).To(HaveKeyWithValue("temperature", 22.0))
		Expect(frame.Timestamp).NotTo(BeZero())
	})

	It("should stream readings recorded after connecting", func() {
		conn := dial()

		Eventually(func() error {
			return broker.Publish(context.Background(), usecases.ReadingsTopic, async.BrokerMessage{Event: "noop"})
		}).Should(Succeed())

		readings.Record(context.Background(), domain.Reading{"temperature": 27.25, "sensor": "roof"})

		frame := readFrame(conn)
		Expect(frame.Data).To(Equal(map[string]any{"temperature": 27.25, "sensor": "roof"}))
	})

	It("should close streams on shutdown", func() {
		conn := dial()

		Eventually(func() error {
			return broker.Publish(context.Background(), usecases.ReadingsTopic, async.BrokerMessage{Event: "noop"})
		}).Should(Succeed())

		controller.Shutdown()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		Expect(websocket.IsCloseError(err, websocket.CloseGoingAway)).To(BeTrue())
	})

	It("should refuse streams once the broker is stopped", func() {
		broker.Stop()

		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)

		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
	})
})
