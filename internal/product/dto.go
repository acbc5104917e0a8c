package product

import (
	"strings"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type CreateProductDTO struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int64           `json:"stock"`
}

func (d CreateProductDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("category", d.Category).Required()
	v.Field("price", d.Price).NonNegativeDecimal(internal.ErrCodeInvalidPrice)
	v.Field("stock", d.Stock).MinInt(0, internal.ErrCodeInvalidStock)
	return v.Validate()
}

// UpdateProductDTO carries a partial update; nil fields are left untouched.
type UpdateProductDTO struct {
	Name  *string          `json:"name,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock *int64           `json:"stock,omitempty"`
}

func (d UpdateProductDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required()
		v.Field("name", *d.Name).MaxLength(200)
	}
	if d.Price != nil {
		v.Field("price", *d.Price).NonNegativeDecimal(internal.ErrCodeInvalidPrice)
	}
	if d.Stock != nil {
		v.Field("stock", *d.Stock).MinInt(0, internal.ErrCodeInvalidStock)
	}
	return v.Validate()
}

func (d UpdateProductDTO) Empty() bool {
	return d.Name == nil && d.Price == nil && d.Stock == nil
}

// Columns lists only the fields the update sets, so untouched columns such as
// a stock debited by a concurrent delivery are never written back.
func (d UpdateProductDTO) Columns(now time.Time) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": now}
	if d.Name != nil {
		cols["name"] = strings.TrimSpace(*d.Name)
	}
	if d.Price != nil {
		cols["price"] = *d.Price
	}
	if d.Stock != nil {
		cols["stock"] = *d.Stock
	}
	return cols
}

type ListFilter struct {
	Category string
	Page     int
	PageSize int
}

type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CategoryID   int64           `json:"category_id"`
	Price        decimal.Decimal `json:"price"`
	Stock        int64           `json:"stock"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	ThumbnailID  string          `json:"thumbnail_id,omitempty"`
}
