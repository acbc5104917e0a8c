package datamodel

import (
	"github.com/frahmantamala/school-store/internal/core/datamodel/category"
	"github.com/frahmantamala/school-store/internal/core/datamodel/order"
	"github.com/frahmantamala/school-store/internal/core/datamodel/product"
	"github.com/frahmantamala/school-store/internal/core/datamodel/role"
	"github.com/frahmantamala/school-store/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Models lists every persisted table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&role.Role{},
		&role.RoleClaim{},
		&user.User{},
		&user.UserRole{},
		&category.Category{},
		&product.Product{},
		&order.Order{},
	}
}

// AutoMigrate creates the schema on databases that are not managed by goose,
// such as the sqlite driver used for local runs and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
