package order

import (
	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/core/common/validation"
)

type PlaceOrderDTO struct {
	ProductID         int64 `json:"product_id"`
	OrderedItemsCount int64 `json:"ordered_items_count"`
}

func (d PlaceOrderDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("product_id", d.ProductID).Required()
	v.Field("ordered_items_count", d.OrderedItemsCount).MinInt(1, internal.ErrCodeInvalidItemsCount)
	return v.Validate()
}

// DeliverOrderDTO settles an order. A zero DeliveredItemsCount delivers the
// full ordered quantity.
type DeliverOrderDTO struct {
	DeliveryMan         string `json:"delivery_man"`
	DeliveredItemsCount int64  `json:"delivered_items_count"`
}

func (d DeliverOrderDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("delivered_items_count", d.DeliveredItemsCount).MinInt(0, internal.ErrCodeInvalidItemsCount)
	v.Field("delivery_man", d.DeliveryMan).MaxLength(100)
	return v.Validate()
}

type ListFilter struct {
	UserID    string
	Delivered *bool
	Page      int
	PageSize  int
}
