package usecases_test

import (
	"context"
	"thermo-server/internal/infra/async"
	"thermo-server/internal/temperature/domain"
	"thermo-server/internal/temperature/usecases"
	usecases_mocks "thermo-server/test/unit/doubles/temperature/usecases"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("ReadingService", func() {
	var (
		ctrl      *gomock.Controller
		mockStore *usecases_mocks.MockReadingStore
		broker    *async.LocalBroker
		service   *usecases.SimpleReadingService
		ctx       context.Context
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockStore = usecases_mocks.NewMockReadingStore(ctrl)
		broker = async.NewLocalBroker()
		service = usecases.NewReadingService(mockStore, broker)
		ctx = context.Background()
	})

	AfterEach(func() {
		broker.Stop()
		ctrl.Finish()
	})

	Context("Record", func() {
		It("should write the reading even when nobody listens", func() {
			reading := domain.Reading{"temperature": 23.5}
			mockStore.EXPECT().Write(gomock.Any(), reading).Times(1)

			service.Record(ctx, reading)
		})

		It("should publish the reading to subscribers", func() {
			subscription, err := broker.Subscribe(usecases.ReadingsTopic)
			Expect(err).NotTo(HaveOccurred())

			reading := domain.Reading{"temperature": 23.5, "humidity": 40.0}
			mockStore.EXPECT().Write(gomock.Any(), reading).Times(1)

			service.Record(ctx, reading)

			Eventually(subscription.Receiver).Should(Receive(And(
				HaveField("Event", usecases.ReadingRecordedEvent),
				HaveField("Value", domain.Reading{"temperature": 23.5, "humidity": 40.0}),
			)))
		})
	})

	Context("Latest", func() {
		It("should return what the store holds", func() {
			mockStore.EXPECT().Read(gomock.Any()).Return(domain.Reading{"temperature": 19.0}, true)

			reading, ok := service.Latest(ctx)

			Expect(ok).To(BeTrue())
			Expect(reading).To(Equal(domain.Reading{"temperature": 19.0}))
		})

		It("should report an unset store", func() {
			mockStore.EXPECT().Read(gomock.Any()).Return(nil, false)

			_, ok := service.Latest(ctx)

			Expect(ok).To(BeFalse())
		})
	})
})
