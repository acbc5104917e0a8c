package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderPlaced       = "order.placed"
	EventTypeOrderDelivered    = "order.delivered"
	EventTypeRoleClaimsChanged = "role.claims_changed"
)

type OrderPlacedEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	UserID    string `json:"user_id"`
	Count     int64  `json:"count"`
}

func NewOrderPlacedEvent(orderID, productID int64, userID string, count int64, at time.Time) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeOrderPlaced,
			Timestamp: at,
			Data: map[string]interface{}{
				"order_id":   orderID,
				"product_id": productID,
				"user_id":    userID,
				"count":      count,
			},
		},
		OrderID:   orderID,
		ProductID: productID,
		UserID:    userID,
		Count:     count,
	}
}

type OrderDeliveredEvent struct {
	BaseEvent
	OrderID        int64           `json:"order_id"`
	ProductID      int64           `json:"product_id"`
	DeliveredCount int64           `json:"delivered_count"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	DeliveryMan    string          `json:"delivery_man"`
}

func NewOrderDeliveredEvent(orderID, productID, deliveredCount int64, total decimal.Decimal, deliveryMan string, at time.Time) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeOrderDelivered,
			Timestamp: at,
			Data: map[string]interface{}{
				"order_id":        orderID,
				"product_id":      productID,
				"delivered_count": deliveredCount,
				"total_price":     total.String(),
				"delivery_man":    deliveryMan,
			},
		},
		OrderID:        orderID,
		ProductID:      productID,
		DeliveredCount: deliveredCount,
		TotalPrice:     total,
		DeliveryMan:    deliveryMan,
	}
}

type RoleClaimsChangedEvent struct {
	BaseEvent
	Role        string   `json:"role"`
	Mode        string   `json:"mode"`
	Permissions []string `json:"permissions"`
}

func NewRoleClaimsChangedEvent(role, mode string, permissions []string) *RoleClaimsChangedEvent {
	return &RoleClaimsChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeRoleClaimsChanged,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"role":        role,
				"mode":        mode,
				"permissions": permissions,
			},
		},
		Role:        role,
		Mode:        mode,
		Permissions: permissions,
	}
}
