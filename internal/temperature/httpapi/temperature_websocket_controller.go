package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/infra/httpserver"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/httpapi/internal"
	"thermo-server/internal/temperature/usecases"
	"time"

	"github.com/gorilla/websocket"
)

const (
	_writeWait  = 10 * time.Second
	_pongWait   = 60 * time.Second
	_pingPeriod = (_pongWait * 9) / 10
	_readLimit  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewTemperatureWebSocketController(readings usecases.ReadingService, broker async.InternalBroker) *TemperatureWebSocketController {
	ctx, cancel := context.WithCancel(context.Background())
	return &TemperatureWebSocketController{
		readings: readings,
		broker:   broker,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

var _ httpserver.Controller = (*TemperatureWebSocketController)(nil)

// TemperatureWebSocketController streams every recorded reading to its
// connected clients, starting with the latest one.
type TemperatureWebSocketController struct {
	readings usecases.ReadingService
	broker   async.InternalBroker
	ctx      context.Context
	cancel   context.CancelFunc
	now      func() time.Time
}

func (c *TemperatureWebSocketController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /ws/temperature", c.handleWebSocket())
}

// Shutdown closes every open stream.
func (c *TemperatureWebSocketController) Shutdown() {
	c.cancel()
}

func (c *TemperatureWebSocketController) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subscription, err := c.broker.Subscribe(usecases.ReadingsTopic)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("error", err))
			c.unsubscribe(subscription)
			return
		}

		slog.Info("temperature stream opened", slog.String("remote_addr", r.RemoteAddr))
		go c.stream(conn, subscription)
	}
}

func (c *TemperatureWebSocketController) stream(conn *websocket.Conn, subscription async.Subscription) {
	defer func() {
		c.unsubscribe(subscription)
		conn.Close()
		slog.Debug("temperature stream closed", slog.String("remote_addr", conn.RemoteAddr().String()))
	}()

	closed := make(chan struct{})
	go c.readUntilClosed(conn, closed)

	if reading, ok := c.readings.Latest(c.ctx); ok {
		if err := c.write(conn, reading); err != nil {
			return
		}
	}

	ticker := time.NewTicker(_pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(_writeWait))
			return
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(_writeWait)); err != nil {
				return
			}
		case msg, ok := <-subscription.Receiver:
			if !ok {
				return
			}
			reading, isReading := msg.Value.(domain.Reading)
			if msg.Event != usecases.ReadingRecordedEvent || !isReading {
				continue
			}
			if err := c.write(conn, reading); err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains client frames so pongs and close frames are handled.
func (c *TemperatureWebSocketController) readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(_readLimit)
	conn.SetReadDeadline(time.Now().Add(_pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(_pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("temperature stream read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *TemperatureWebSocketController) write(conn *websocket.Conn, reading domain.Reading) error {
	conn.SetWriteDeadline(time.Now().Add(_writeWait))
	if err := conn.WriteJSON(internal.NewReadingMessage(reading, c.now())); err != nil {
		slog.Warn("writing to temperature stream", slog.Any("error", err))
		return err
	}
	return nil
}

func (c *TemperatureWebSocketController) unsubscribe(subscription async.Subscription) {
	if err := c.broker.Unsubscribe(usecases.ReadingsTopic, subscription); err != nil {
		slog.Debug("unsubscribing temperature stream", slog.Any("error", err))
	}
}
