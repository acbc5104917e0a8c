package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/order"
	"github.com/jmoiron/sqlx"
)

const viewSelect = `
SELECT
	o.id,
	o.product_id,
	COALESCE(p.name, '` + order.DeletedProduct + `') AS product_name,
	o.user_id,
	COALESCE(u.username, '` + order.DeletedUser + `') AS username,
	o.ordered_items_count,
	o.delivered_items_count,
	o.delivered,
	COALESCE(o.delivery_man, '') AS delivery_man,
	o.total_price,
	o.created_at,
	o.delivered_at
FROM orders o
LEFT JOIN products p ON p.id = o.product_id
LEFT JOIN users u ON u.id = o.user_id`

// OrderViewRepository reads the joined order view with sqlx.
type OrderViewRepository struct {
	db *sqlx.DB
}

func NewOrderViewRepository(db *sqlx.DB) order.ReadModel {
	return &OrderViewRepository{db: db}
}

func (r *OrderViewRepository) ListViews(ctx context.Context, filter order.ListFilter) ([]order.View, int64, error) {
	where, args := buildWhere(filter)

	var count int64
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM orders o" + where)
	if err := r.db.GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, err
	}

	limit, offset := internal.Page(filter.Page, filter.PageSize)
	listQuery := r.db.Rebind(viewSelect + where + " ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?")

	views := []order.View{}
	if err := r.db.SelectContext(ctx, &views, listQuery, append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (r *OrderViewRepository) GetView(ctx context.Context, id int64) (*order.View, error) {
	var view order.View
	err := r.db.GetContext(ctx, &view, r.db.Rebind(viewSelect+" WHERE o.id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &view, nil
}

func buildWhere(filter order.ListFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != "" {
		conds = append(conds, "o.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Delivered != nil {
		conds = append(conds, "o.delivered = ?")
		args = append(args, *filter.Delivered)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
