package async_test

import (
	"context"

	"thermo-server/internal/infra/async"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Local Broker", func() {
	var broker *async.LocalBroker
	var topic async.BrokerTopicName
	var subscription async.Subscription
	var message async.BrokerMessage
	var ctx context.Context

	BeforeEach(func() {
		broker = async.NewLocalBroker()
		ctx = context.TODO()
		topic = "temperature.readings"
		message = async.BrokerMessage{
			Event: "reading_recorded",
			Value: map[string]any{"temperature": 23.5},
		}
	})

	Context("Subscribe", func() {
		When("a single subscriber listens to a topic", func() {
			It("should receive the published message", func() {
				subscription, _ = broker.Subscribe(topic)

				Expect(broker.Publish(ctx, topic, message)).To(Succeed())

				Eventually(subscription.Receiver).Should(Receive(And(
					HaveField("Event", "reading_recorded"),
					HaveField("Value", map[string]any{"temperature": 23.5}),
				)))
			})
		})

		When("multiple subscribers listen to a topic", func() {
			It("should deliver the message to every subscriber", func() {
				subscription, _ = broker.Subscribe(topic)
				subscription2, _ := broker.Subscribe(topic)

				Expect(broker.Publish(ctx, topic, message)).To(Succeed())

				Eventually(subscription.Receiver).Should(Receive())
				Eventually(subscription2.Receiver).Should(Receive())
			})
		})

		When("a subscriber does not drain its buffer", func() {
			It("should not block the publisher", func() {
				subscription, _ = broker.Subscribe(topic)

				for range 100 {
					Expect(broker.Publish(ctx, topic, message)).To(Succeed())
				}

				Expect(len(subscription.Receiver)).To(Equal(cap(subscription.Receiver)))
			})
		})

		When("the broker is stopped", func() {
			It("should close receivers and reject new subscriptions", func() {
				subscription, _ = broker.Subscribe(topic)

				broker.Stop()

				Eventually(subscription.Receiver).Should(BeClosed())
				_, err := broker.Subscribe(topic)
				Expect(err).To(MatchError(async.ErrBrokerStopped))
			})
		})
	})

	Context("Publish", func() {
		When("nobody subscribed to the topic", func() {
			It("should report the topic as not found", func() {
				err := broker.Publish(ctx, topic, message)

				Expect(err).To(MatchError(async.ErrTopicNotFound))
			})
		})
	})

	Context("Unsubscribe", func() {
		When("the topic has no subscribers", func() {
			It("should report the topic as not found", func() {
				err := broker.Unsubscribe(topic, async.Subscription{ID: "unknown"})

				Expect(err).To(MatchError(async.ErrTopicNotFound))
			})
		})

		When("the subscription is unknown", func() {
			It("should report the subscriptor as not found", func() {
				_, _ = broker.Subscribe(topic)

				err := broker.Unsubscribe(topic, async.Subscription{ID: "unknown"})

				Expect(err).To(MatchError(async.ErrSubscriptorNotFound))
			})
		})

		When("the subscription exists", func() {
			It("should close its receiver and stop delivering to it", func() {
				subscription, _ = broker.Subscribe(topic)
				other, _ := broker.Subscribe(topic)

				Expect(broker.Unsubscribe(topic, subscription)).To(Succeed())
				Expect(broker.Publish(ctx, topic, message)).To(Succeed())

				Eventually(subscription.Receiver).Should(BeClosed())
				Eventually(other.Receiver).Should(Receive())
			})
		})
	})
})
