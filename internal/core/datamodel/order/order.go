package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                  int64           `gorm:"primaryKey"`
	ProductID           *int64          `gorm:"column:product_id;index"`
	UserID              *string         `gorm:"column:user_id;size:36;index"`
	OrderedItemsCount   int64           `gorm:"column:ordered_items_count;not null"`
	DeliveredItemsCount int64           `gorm:"column:delivered_items_count;not null;default:0"`
	Delivered           bool            `gorm:"column:delivered;not null;default:false"`
	DeliveryMan         string          `gorm:"column:delivery_man"`
	TotalPrice          decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt           time.Time       `gorm:"column:created_at"`
	DeliveredAt         *time.Time      `gorm:"column:delivered_at"`
}

func (Order) TableName() string {
	return "orders"
}
