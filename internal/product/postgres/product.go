package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/category"
	categoryDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/category"
	orderDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/product"
	"github.com/frahmantamala/school-store/internal/product"
	"github.com/frahmantamala/school-store/internal/thumbnail"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.RepositoryAPI {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateInCategory(ctx context.Context, p *productDatamodel.Product, categoryName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat categoryDatamodel.Category
		err := tx.Where("normalized_name = ?", category.NormalizeName(categoryName)).First(&cat).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return category.ErrCategoryNotFound.WithMessage(fmt.Sprintf("category %q not found", categoryName))
			}
			return err
		}

		p.CategoryID = cat.ID
		p.CategoryName = cat.Name
		return tx.Create(p).Error
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, dto product.UpdateProductDTO, at time.Time) (*productDatamodel.Product, error) {
	var stored *productDatamodel.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p productDatamodel.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&p).Updates(dto.Columns(at)).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		stored = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (string, error) {
	var thumbnailID string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p productDatamodel.Product
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return err
		}
		thumbnailID = p.ThumbnailID

		if err := tx.Model(&orderDatamodel.Order{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return fmt.Errorf("detach orders: %w", err)
		}

		return tx.Delete(&p).Error
	})
	if err != nil {
		return "", err
	}
	return thumbnailID, nil
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*productDatamodel.Product, int64, error) {
	byCategory := func(db *gorm.DB) *gorm.DB {
		if filter.Category == "" {
			return db
		}
		return db.Where("category_id IN (?)",
			r.db.Model(&categoryDatamodel.Category{}).Select("id").
				Where("normalized_name = ?", category.NormalizeName(filter.Category)))
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&productDatamodel.Product{}).Scopes(byCategory).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := internal.Page(filter.Page, filter.PageSize)

	var products []*productDatamodel.Product
	err := r.db.WithContext(ctx).Scopes(byCategory).
		Order("name ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *ProductRepository) SetThumbnail(ctx context.Context, id int64, obj thumbnail.Object) (string, error) {
	var previous string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p productDatamodel.Product
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return err
		}
		previous = p.ThumbnailID

		return tx.Model(&p).Updates(map[string]interface{}{
			"thumbnail_url": obj.URL,
			"thumbnail_id":  obj.ID,
		}).Error
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}
