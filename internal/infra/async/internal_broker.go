package async

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const _subscriptionBuffer = 16

type BrokerTopicName string

type BrokerMessage struct {
	Event string
	Value any
	Span  trace.Span
	Error error
}

type InternalBroker interface {
	Subscribe(topic BrokerTopicName) (Subscription, error)
	Unsubscribe(topic BrokerTopicName, subscription Subscription) error
	Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error
	Stop()
}

var _ InternalBroker = (*LocalBroker)(nil)

var ErrTopicNotFound = errors.New("topic not found")
var ErrSubscriptorNotFound = errors.New("subscriptor not found")
var ErrBrokerStopped = errors.New("broker stopped")

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{
		subscriptors: make(map[BrokerTopicName][]Subscription),
	}
}

// LocalBroker fans messages out to in-process subscribers. Delivery is best
// effort: a subscriber whose buffer is full misses the message.
type LocalBroker struct {
	mu           sync.Mutex
	subscriptors map[BrokerTopicName][]Subscription
	stopped      bool
}

type Subscription struct {
	ID       string
	Receiver chan BrokerMessage
}

func (b *LocalBroker) Subscribe(topic BrokerTopicName) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return Subscription{}, ErrBrokerStopped
	}

	subscription := Subscription{
		ID:       uuid.NewString(),
		Receiver: make(chan BrokerMessage, _subscriptionBuffer),
	}
	b.subscriptors[topic] = append(b.subscriptors[topic], subscription)
	return subscription, nil
}

func (b *LocalBroker) Unsubscribe(topic BrokerTopicName, subscription Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscriptors, ok := b.subscriptors[topic]
	if !ok {
		return ErrTopicNotFound
	}

	index := slices.IndexFunc(subscriptors, func(s Subscription) bool { return s.ID == subscription.ID })
	if index < 0 {
		return ErrSubscriptorNotFound
	}

	close(subscriptors[index].Receiver)
	b.subscriptors[topic] = slices.Delete(subscriptors, index, index+1)

	return nil
}

// Publish returns ErrTopicNotFound when nobody has ever subscribed to topic.
func (b *LocalBroker) Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error {
	msg.Span = trace.SpanFromContext(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	subscriptors, ok := b.subscriptors[topic]
	if !ok {
		return ErrTopicNotFound
	}

	for _, s := range subscriptors {
		select {
		case s.Receiver <- msg:
		default:
		}
	}

	return nil
}

func (b *LocalBroker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.stopped = true

	for topic, subscriptors := range b.subscriptors {
		for _, s := range subscriptors {
			close(s.Receiver)
		}
		delete(b.subscriptors, topic)
	}
}
