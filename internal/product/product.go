package product

import (
	"strings"
	"time"

	"github.com/frahmantamala/school-store/internal"
	productDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/product"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64
	Name         string
	CategoryID   int64
	CategoryName string
	Price        decimal.Decimal
	Stock        int64
	ThumbnailURL string
	ThumbnailID  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	ErrProductNotFound = internal.NewNotFoundError("product not found", internal.ErrCodeUnknownProduct)
	ErrInvalidPrice    = internal.NewValidationFieldError("price", "price must not be negative", internal.ErrCodeInvalidPrice)
	ErrInvalidStock    = internal.NewValidationFieldError("stock", "stock must not be negative", internal.ErrCodeInvalidStock)
)

func NewProduct(dto CreateProductDTO, now time.Time) *Product {
	return &Product{
		Name:      strings.TrimSpace(dto.Name),
		Price:     dto.Price,
		Stock:     dto.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.CategoryName,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Stock:        p.Stock,
		ThumbnailURL: p.ThumbnailURL,
		ThumbnailID:  p.ThumbnailID,
	}
}

func ToDataModel(p *Product) *productDatamodel.Product {
	return &productDatamodel.Product{
		ID:           p.ID,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Price:        p.Price,
		Stock:        p.Stock,
		ThumbnailURL: p.ThumbnailURL,
		ThumbnailID:  p.ThumbnailID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModel(p *productDatamodel.Product) *Product {
	return &Product{
		ID:           p.ID,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Price:        p.Price,
		Stock:        p.Stock,
		ThumbnailURL: p.ThumbnailURL,
		ThumbnailID:  p.ThumbnailID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
