package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

//go:generate mockgen -source=./client.go -destination=../../../test/unit/doubles/infra/mqtt/client_mock.go -package=mqtt

const (
	_defaultQoS          = 0 // At most once
	_defaultRetained     = false
	_operationTimeout    = 5 * time.Second
	_keepAlive           = 10 * time.Second
	_disconnectQuiesceMs = 250
	_clientIDPrefix      = "thermo-server-"
)

var ErrTimeout = errors.New("timed out waiting for MQTT broker")

type Client interface {
	Subscribe(topic string, qos byte, callback MessageHandler) error
	Publish(topic string, msg any) error

	Disconnect()
}

type MessageHandler func(Client, Message)

type Message interface {
	Topic() string
	MessageID() uint16
	Payload() []byte
	Ack()
}

type SimpleClientOpts struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

type subscription struct {
	qos      byte
	callback MessageHandler
}

// NewSimpleClient connects to the broker and keeps reconnecting in the
// background. Subscriptions are restored after every reconnect.
func NewSimpleClient(opts SimpleClientOpts) (*SimpleClient, error) {
	simpleClient := &SimpleClient{
		subscriptions: make(map[string]subscription),
	}

	client := paho.NewClient(clientOptions(opts, simpleClient.onConnect))
	if err := wait(client.Connect()); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", opts.Broker, err)
	}

	simpleClient.client = client
	return simpleClient, nil
}

func clientOptions(opts SimpleClientOpts, onConnect paho.OnConnectHandler) *paho.ClientOptions {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = _clientIDPrefix + uuid.NewString()
	}

	return paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(clientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetOnConnectHandler(onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Error("connection lost to MQTT broker", slog.Any("error", err))
		}).
		SetAutoReconnect(true).
		SetKeepAlive(_keepAlive).
		SetConnectTimeout(_operationTimeout)
}

func wait(token paho.Token) error {
	if !token.WaitTimeout(_operationTimeout) {
		return ErrTimeout
	}
	return token.Error()
}

var _ Client = (*SimpleClient)(nil)

type SimpleClient struct {
	client        paho.Client
	subscriptions map[string]subscription
	mu            sync.RWMutex
}

func (c *SimpleClient) onConnect(client paho.Client) {
	slog.Info("connected to MQTT broker")

	c.mu.RLock()
	defer c.mu.RUnlock()

	for topic, sub := range c.subscriptions {
		if err := wait(client.Subscribe(topic, sub.qos, c.pahoHandler(sub.callback))); err != nil {
			slog.Error("restoring MQTT subscription", slog.String("topic", topic), slog.Any("error", err))
		}
	}
}

func (c *SimpleClient) pahoHandler(callback MessageHandler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		callback(c, msg)
	}
}

func (c *SimpleClient) Subscribe(topic string, qos byte, callback MessageHandler) error {
	if err := wait(c.client.Subscribe(topic, qos, c.pahoHandler(callback))); err != nil {
		return fmt.Errorf("subscribing to topic %s: %w", topic, err)
	}

	c.mu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, callback: callback}
	c.mu.Unlock()

	slog.Info("subscribed to MQTT topic", slog.String("topic", topic), slog.Int("qos", int(qos)))
	return nil
}

// Publish sends msg as JSON. Byte slices are sent untouched.
func (c *SimpleClient) Publish(topic string, msg any) error {
	payload, ok := msg.([]byte)
	if !ok {
		var err error
		payload, err = json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshaling message: %w", err)
		}
	}

	if err := wait(c.client.Publish(topic, _defaultQoS, _defaultRetained, payload)); err != nil {
		return fmt.Errorf("publishing to topic %s: %w", topic, err)
	}

	return nil
}

func (c *SimpleClient) Disconnect() {
	c.mu.Lock()
	clear(c.subscriptions)
	c.mu.Unlock()

	c.client.Disconnect(_disconnectQuiesceMs)
}
