package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/school-store/internal/category"
	"github.com/frahmantamala/school-store/internal/core/database"
	categoryDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/category"
	orderDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/product"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("normalized_name = ?", category.NormalizeName(name)).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return category.ErrDuplicateCategory.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *CategoryRepository) DeleteCascade(ctx context.Context, id int64) ([]string, error) {
	var thumbnails []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat categoryDatamodel.Category
		if err := tx.Where("id = ?", id).First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return category.ErrCategoryNotFound
			}
			return err
		}

		productIDs := tx.Model(&productDatamodel.Product{}).Select("id").Where("category_id = ?", id)

		if err := tx.Model(&productDatamodel.Product{}).
			Where("category_id = ? AND thumbnail_id <> ''", id).
			Pluck("thumbnail_id", &thumbnails).Error; err != nil {
			return fmt.Errorf("collect thumbnails: %w", err)
		}

		if err := tx.Model(&orderDatamodel.Order{}).
			Where("product_id IN (?)", productIDs).
			Update("product_id", nil).Error; err != nil {
			return fmt.Errorf("detach orders: %w", err)
		}

		if err := tx.Where("category_id = ?", id).Delete(&productDatamodel.Product{}).Error; err != nil {
			return fmt.Errorf("delete products: %w", err)
		}

		return tx.Delete(&cat).Error
	})
	if err != nil {
		return nil, err
	}
	return thumbnails, nil
}
