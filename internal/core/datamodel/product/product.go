package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64           `gorm:"primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	CategoryID   int64           `gorm:"column:category_id;not null;index"`
	CategoryName string          `gorm:"column:category_name;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock        int64           `gorm:"column:stock;not null"`
	ThumbnailURL string          `gorm:"column:thumbnail_url"`
	ThumbnailID  string          `gorm:"column:thumbnail_id"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}
