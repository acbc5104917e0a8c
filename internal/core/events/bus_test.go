package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/school-store/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		at  time.Time
	)

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		at = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	})

	It("delivers asynchronously to every subscriber", func() {
		var (
			mu   sync.Mutex
			seen []string
		)
		record := func(name string) events.Handler {
			return func(ctx context.Context, e events.Event) error {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, name)
				return nil
			}
		}
		bus.Subscribe(events.EventTypeOrderPlaced, record("audit"))
		bus.Subscribe(events.EventTypeOrderPlaced, record("metrics"))

		Expect(bus.Publish(context.Background(), events.NewOrderPlacedEvent(1, 2, "u-1", 3, at))).To(Succeed())
		bus.Wait()

		Expect(seen).To(ConsistOf("audit", "metrics"))
	})

	It("detaches handlers from the request's cancellation", func() {
		var handlerErr error
		bus.Subscribe(events.EventTypeOrderDelivered, func(ctx context.Context, e events.Event) error {
			handlerErr = ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewOrderDeliveredEvent(1, 2, 5, decimal.NewFromInt(10), "Budi", at))).To(Succeed())
		bus.Wait()

		Expect(handlerErr).NotTo(HaveOccurred())
	})

	It("swallows asynchronous handler failures", func() {
		bus.Subscribe(events.EventTypeRoleClaimsChanged, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})

		Expect(bus.Publish(context.Background(), events.NewRoleClaimsChangedEvent("Teacher", "Add", []string{"products.add"}))).To(Succeed())
		bus.Wait()
	})

	It("surfaces synchronous handler failures", func() {
		bus.Subscribe(events.EventTypeOrderPlaced, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})

		err := bus.PublishSync(context.Background(), events.NewOrderPlacedEvent(1, 2, "u-1", 3, at))
		Expect(err).To(MatchError(ContainSubstring("order.placed")))
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(context.Background(), events.NewOrderPlacedEvent(1, 2, "u-1", 3, at))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewOrderPlacedEvent(1, 2, "u-1", 3, at))).To(Succeed())
	})

	It("hands subscribers the typed event", func() {
		var got *events.OrderDeliveredEvent
		bus.Subscribe(events.EventTypeOrderDelivered, func(ctx context.Context, e events.Event) error {
			got, _ = e.(*events.OrderDeliveredEvent)
			return nil
		})

		Expect(bus.PublishSync(context.Background(), events.NewOrderDeliveredEvent(7, 2, 5, decimal.RequireFromString("12.50"), "Budi", at))).To(Succeed())

		Expect(got).NotTo(BeNil())
		Expect(got.OrderID).To(Equal(int64(7)))
		Expect(got.EventID()).NotTo(BeEmpty())
		Expect(got.OccurredAt()).To(Equal(at))
		Expect(got.Payload()).To(HaveKeyWithValue("total_price", "12.5"))
	})

	It("feeds the observers without failing", func() {
		events.RegisterObservers(bus, slog.New(slog.NewTextHandler(io.Discard, nil)))

		Expect(bus.PublishSync(context.Background(), events.NewOrderPlacedEvent(1, 2, "u-1", 3, at))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewOrderDeliveredEvent(1, 2, 3, decimal.NewFromInt(6), "", at))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewRoleClaimsChangedEvent("Teacher", "Remove", []string{"products.order"}))).To(Succeed())
	})
})
