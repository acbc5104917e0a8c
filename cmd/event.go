package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/school-store/internal/core/events"
	"github.com/frahmantamala/school-store/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect store events: publish a sample event through the audit observers`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample event",
	Long:      `Publish a sample store event to the registered observers for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeOrderPlaced, events.EventTypeOrderDelivered, events.EventTypeRoleClaimsChanged},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

func sampleEvent(eventType string) (events.Event, error) {
	now := time.Now().UTC()
	switch eventType {
	case events.EventTypeOrderPlaced:
		return events.NewOrderPlacedEvent(1, 1, "cli", 5, now), nil
	case events.EventTypeOrderDelivered:
		return events.NewOrderDeliveredEvent(1, 1, 5, decimal.NewFromInt(10), "cli", now), nil
	case events.EventTypeRoleClaimsChanged:
		return events.NewRoleClaimsChangedEvent("Teacher", "Add", []string{"products.order"}), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

func publishSampleEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	events.RegisterObservers(bus, lg)

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("sample event published")
	return nil
}

func init() {
	eventCmd.AddCommand(publishEventCmd)
}
