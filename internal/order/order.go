package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/school-store/internal"
	orderDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/order"
	"github.com/shopspring/decimal"
)

const (
	DefaultDeliveryMan = "Unknown"
	DeletedProduct     = "Deleted Product"
	DeletedUser        = "Deleted User"
)

var (
	ErrOrderNotFound      = internal.NewNotFoundError("order not found", internal.ErrCodeUnknownOrder)
	ErrAlreadyDelivered   = internal.NewValidationError("order has already been delivered", internal.ErrCodeAlreadyDelivered)
	ErrInsufficientStock  = internal.NewValidationError("not enough stock to deliver this order", internal.ErrCodeInsufficientStock)
	ErrInvalidItemsCount  = internal.NewValidationFieldError("delivered_items_count", "delivered items count is out of range", internal.ErrCodeInvalidItemsCount)
	ErrProductUnavailable = internal.NewValidationError("ordered product no longer exists", internal.ErrCodeProductUnavailable)
)

type Order struct {
	ID                  int64           `json:"id"`
	ProductID           *int64          `json:"product_id"`
	UserID              *string         `json:"user_id"`
	OrderedItemsCount   int64           `json:"ordered_items_count"`
	DeliveredItemsCount int64           `json:"delivered_items_count"`
	Delivered           bool            `json:"delivered"`
	DeliveryMan         string          `json:"delivery_man,omitempty"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	CreatedAt           time.Time       `json:"created_at"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty"`
}

// View is the order as listed to clients, joined with product and user names.
type View struct {
	ID                  int64           `db:"id" json:"id"`
	ProductID           *int64          `db:"product_id" json:"product_id"`
	ProductName         string          `db:"product_name" json:"product_name"`
	UserID              *string         `db:"user_id" json:"user_id"`
	Username            string          `db:"username" json:"username"`
	OrderedItemsCount   int64           `db:"ordered_items_count" json:"ordered_items_count"`
	DeliveredItemsCount int64           `db:"delivered_items_count" json:"delivered_items_count"`
	Delivered           bool            `db:"delivered" json:"delivered"`
	DeliveryMan         string          `db:"delivery_man" json:"delivery_man"`
	TotalPrice          decimal.Decimal `db:"total_price" json:"total_price"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	DeliveredAt         *time.Time      `db:"delivered_at" json:"delivered_at,omitempty"`
}

func (v *View) OwnedBy(userID string) bool {
	return v.UserID != nil && userID != "" && *v.UserID == userID
}

// StockedProduct is the locked product row a delivery settles against.
type StockedProduct struct {
	ID    int64
	Price decimal.Decimal
	Stock int64
}

// Settlement is the outcome of delivering an order.
type Settlement struct {
	DeliveredCount int64
	TotalPrice     decimal.Decimal
	RemainingStock int64
	DeliveryMan    string
	DeliveredAt    time.Time
}

// Settle applies the delivery rules to a locked order and product. A zero
// requested count delivers everything that was ordered.
func Settle(o *orderDatamodel.Order, p *StockedProduct, requested int64, deliveryMan string, at time.Time) (*Settlement, error) {
	if o.Delivered {
		return nil, ErrAlreadyDelivered
	}

	count := requested
	if count == 0 {
		count = o.OrderedItemsCount
	}
	if count < 1 || count > o.OrderedItemsCount {
		return nil, ErrInvalidItemsCount.WithMessage(
			fmt.Sprintf("delivered items count must be between 1 and %d", o.OrderedItemsCount))
	}

	if p == nil {
		return nil, ErrProductUnavailable
	}
	if p.Stock < count {
		return nil, ErrInsufficientStock.WithMessage(
			fmt.Sprintf("only %d items in stock, %d requested", p.Stock, count))
	}

	deliveryMan = strings.TrimSpace(deliveryMan)
	if deliveryMan == "" {
		deliveryMan = DefaultDeliveryMan
	}

	return &Settlement{
		DeliveredCount: count,
		TotalPrice:     p.Price.Mul(decimal.NewFromInt(count)),
		RemainingStock: p.Stock - count,
		DeliveryMan:    deliveryMan,
		DeliveredAt:    at,
	}, nil
}

func FromDataModel(o *orderDatamodel.Order) *Order {
	return &Order{
		ID:                  o.ID,
		ProductID:           o.ProductID,
		UserID:              o.UserID,
		OrderedItemsCount:   o.OrderedItemsCount,
		DeliveredItemsCount: o.DeliveredItemsCount,
		Delivered:           o.Delivered,
		DeliveryMan:         o.DeliveryMan,
		TotalPrice:          o.TotalPrice,
		CreatedAt:           o.CreatedAt,
		DeliveredAt:         o.DeliveredAt,
	}
}
