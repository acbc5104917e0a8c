package events

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/school-store/pkg/metrics"
)

// RegisterObservers wires the audit log and counters to store events.
func RegisterObservers(bus *EventBus, logger *slog.Logger) {
	bus.Subscribe(EventTypeOrderPlaced, func(ctx context.Context, event Event) error {
		metrics.OrdersPlaced.Inc()
		if e, ok := event.(*OrderPlacedEvent); ok {
			logger.Info("audit: order placed", "order_id", e.OrderID, "product_id", e.ProductID, "user_id", e.UserID, "count", e.Count)
		}
		return nil
	})

	bus.Subscribe(EventTypeOrderDelivered, func(ctx context.Context, event Event) error {
		metrics.OrdersDelivered.Inc()
		if e, ok := event.(*OrderDeliveredEvent); ok {
			metrics.ItemsDelivered.Add(float64(e.DeliveredCount))
			logger.Info("audit: order delivered", "order_id", e.OrderID, "delivered_count", e.DeliveredCount, "total_price", e.TotalPrice.String())
		}
		return nil
	})

	bus.Subscribe(EventTypeRoleClaimsChanged, func(ctx context.Context, event Event) error {
		if e, ok := event.(*RoleClaimsChangedEvent); ok {
			metrics.RoleClaimChanges.WithLabelValues(e.Role, e.Mode).Inc()
			logger.Info("audit: role claims changed", "role", e.Role, "mode", e.Mode, "permissions", e.Permissions)
		}
		return nil
	})
}
