package postgres

import (
	"context"
	"errors"
	"time"

	orderDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/product"
	userDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/user"
	"github.com/frahmantamala/school-store/internal/order"
	"github.com/frahmantamala/school-store/internal/product"
	"github.com/frahmantamala/school-store/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) order.RepositoryAPI {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Place(ctx context.Context, o *orderDatamodel.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productCount int64
		if err := tx.Model(&productDatamodel.Product{}).Where("id = ?", *o.ProductID).Count(&productCount).Error; err != nil {
			return err
		}
		if productCount == 0 {
			return product.ErrProductNotFound
		}

		var userCount int64
		if err := tx.Model(&userDatamodel.User{}).Where("id = ?", *o.UserID).Count(&userCount).Error; err != nil {
			return err
		}
		if userCount == 0 {
			return user.ErrUserNotFound
		}

		return tx.Create(o).Error
	})
}

func (r *OrderRepository) Deliver(ctx context.Context, id int64, requested int64, deliveryMan string, at time.Time) (*orderDatamodel.Order, *order.Settlement, error) {
	var (
		o          orderDatamodel.Order
		settlement *order.Settlement
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return order.ErrOrderNotFound
			}
			return err
		}

		stocked, err := lockProduct(tx, o.ProductID)
		if err != nil {
			return err
		}

		settlement, err = order.Settle(&o, stocked, requested, deliveryMan, at)
		if err != nil {
			return err
		}

		res := tx.Model(&orderDatamodel.Order{}).
			Where("id = ? AND delivered = ?", o.ID, false).
			Updates(map[string]interface{}{
				"delivered":             true,
				"delivered_items_count": settlement.DeliveredCount,
				"delivery_man":          settlement.DeliveryMan,
				"total_price":           settlement.TotalPrice,
				"delivered_at":          settlement.DeliveredAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return order.ErrAlreadyDelivered
		}

		res = tx.Model(&productDatamodel.Product{}).
			Where("id = ? AND stock >= ?", stocked.ID, settlement.DeliveredCount).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock - ?", settlement.DeliveredCount),
				"updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return order.ErrInsufficientStock
		}

		o.Delivered = true
		o.DeliveredItemsCount = settlement.DeliveredCount
		o.DeliveryMan = settlement.DeliveryMan
		o.TotalPrice = settlement.TotalPrice
		deliveredAt := settlement.DeliveredAt
		o.DeliveredAt = &deliveredAt
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &o, settlement, nil
}

// lockProduct returns nil when the order's product has been deleted.
func lockProduct(tx *gorm.DB, productID *int64) (*order.StockedProduct, error) {
	if productID == nil {
		return nil, nil
	}

	var p productDatamodel.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", *productID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order.StockedProduct{ID: p.ID, Price: p.Price, Stock: p.Stock}, nil
}
