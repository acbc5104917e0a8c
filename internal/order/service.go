package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/school-store/internal"
	orderDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/order"
	"github.com/frahmantamala/school-store/internal/core/events"
)

type RepositoryAPI interface {
	// Place inserts the order after checking, in the same transaction, that
	// the product and the user exist.
	Place(ctx context.Context, o *orderDatamodel.Order) error
	// Deliver locks the order and its product, settles it and debits stock
	// atomically.
	Deliver(ctx context.Context, id int64, requested int64, deliveryMan string, at time.Time) (*orderDatamodel.Order, *Settlement, error)
}

// ReadModel serves joined order views.
type ReadModel interface {
	ListViews(ctx context.Context, filter ListFilter) ([]View, int64, error)
	GetView(ctx context.Context, id int64) (*View, error)
}

type Service struct {
	repo      RepositoryAPI
	views     ReadModel
	publisher events.Publisher
	clock     internal.Clock
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, views ReadModel, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		views:     views,
		publisher: publisher,
		clock:     internal.SystemClock{},
		logger:    logger,
	}
}

func (s *Service) WithClock(c internal.Clock) *Service {
	s.clock = c
	return s
}

// PlaceOrder records an undelivered order for userID. Stock is not touched
// until delivery.
func (s *Service) PlaceOrder(ctx context.Context, userID string, dto PlaceOrderDTO) (*Order, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	productID := dto.ProductID
	data := &orderDatamodel.Order{
		ProductID:         &productID,
		UserID:            &userID,
		OrderedItemsCount: dto.OrderedItemsCount,
		CreatedAt:         s.clock.Now(),
	}

	if err := s.repo.Place(ctx, data); err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to place order", "error", err, "product_id", productID, "user_id", userID)
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.NewOrderPlacedEvent(data.ID, productID, userID, data.OrderedItemsCount, data.CreatedAt)); err != nil {
		s.logger.Warn("failed to publish order placed event", "error", err, "order_id", data.ID)
	}

	s.logger.Info("order placed", "order_id", data.ID, "product_id", productID, "user_id", userID, "count", data.OrderedItemsCount)
	return FromDataModel(data), nil
}

// DeliverOrder settles an order exactly once: the total is fixed at the
// current product price and stock is debited by the delivered count.
func (s *Service) DeliverOrder(ctx context.Context, id int64, dto DeliverOrderDTO) (*Order, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	data, settlement, err := s.repo.Deliver(ctx, id, dto.DeliveredItemsCount, dto.DeliveryMan, s.clock.Now())
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to deliver order", "error", err, "order_id", id)
		}
		return nil, err
	}

	var productID int64
	if data.ProductID != nil {
		productID = *data.ProductID
	}
	event := events.NewOrderDeliveredEvent(data.ID, productID, settlement.DeliveredCount, settlement.TotalPrice, settlement.DeliveryMan, settlement.DeliveredAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish order delivered event", "error", err, "order_id", data.ID)
	}

	s.logger.Info("order delivered",
		"order_id", data.ID,
		"product_id", productID,
		"delivered_count", settlement.DeliveredCount,
		"total_price", settlement.TotalPrice.String(),
		"remaining_stock", settlement.RemainingStock,
	)
	return FromDataModel(data), nil
}

func (s *Service) ListOrders(ctx context.Context, filter ListFilter) (*internal.PaginatedResult[View], error) {
	views, count, err := s.views.ListViews(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, err
	}
	if views == nil {
		views = []View{}
	}
	return &internal.PaginatedResult[View]{Data: views, Count: count}, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*View, error) {
	view, err := s.views.GetView(ctx, id)
	if err != nil {
		s.logger.Error("failed to get order", "error", err, "order_id", id)
		return nil, err
	}
	if view == nil {
		return nil, ErrOrderNotFound
	}
	return view, nil
}
