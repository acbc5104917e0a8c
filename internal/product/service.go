package product

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/school-store/internal"
	productDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/product"
	"github.com/frahmantamala/school-store/internal/thumbnail"
)

type RepositoryAPI interface {
	// CreateInCategory resolves the category by case-insensitive name in the
	// same transaction as the insert.
	CreateInCategory(ctx context.Context, p *productDatamodel.Product, categoryName string) error
	GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error)
	// Update locks the row, writes only the fields set in dto and returns the
	// stored product, or nil when it does not exist.
	Update(ctx context.Context, id int64, dto UpdateProductDTO, at time.Time) (*productDatamodel.Product, error)
	// Delete detaches the product's orders and removes it. It returns the
	// thumbnail key the product held.
	Delete(ctx context.Context, id int64) (string, error)
	List(ctx context.Context, filter ListFilter) ([]*productDatamodel.Product, int64, error)
	// SetThumbnail stores the new object and returns the key it replaced.
	SetThumbnail(ctx context.Context, id int64, obj thumbnail.Object) (string, error)
}

type Service struct {
	repo       RepositoryAPI
	thumbnails thumbnail.Store
	clock      internal.Clock
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, thumbnails thumbnail.Store, logger *slog.Logger) *Service {
	if thumbnails == nil {
		thumbnails = thumbnail.Disabled{}
	}
	return &Service{
		repo:       repo,
		thumbnails: thumbnails,
		clock:      internal.SystemClock{},
		logger:     logger,
	}
}

func (s *Service) WithClock(c internal.Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) AddProduct(ctx context.Context, dto CreateProductDTO) (*Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	data := ToDataModel(NewProduct(dto, s.clock.Now()))
	if err := s.repo.CreateInCategory(ctx, data, dto.Category); err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to create product", "error", err, "name", dto.Name)
		}
		return nil, err
	}

	s.logger.Info("product created", "product_id", data.ID, "category_id", data.CategoryID)
	return FromDataModel(data), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get product", "error", err, "product_id", id)
		return nil, err
	}
	if data == nil {
		return nil, ErrProductNotFound
	}
	return FromDataModel(data), nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, dto UpdateProductDTO) (*Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Empty() {
		return s.GetProduct(ctx, id)
	}

	data, err := s.repo.Update(ctx, id, dto, s.clock.Now())
	if err != nil {
		s.logger.Error("failed to update product", "error", err, "product_id", id)
		return nil, err
	}
	if data == nil {
		return nil, ErrProductNotFound
	}

	s.logger.Info("product updated", "product_id", id)
	return FromDataModel(data), nil
}

// DeleteProduct removes the product; its orders keep their history with a
// detached product reference.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	thumbnailID, err := s.repo.Delete(ctx, id)
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to delete product", "error", err, "product_id", id)
		}
		return err
	}

	s.removeThumbnail(ctx, thumbnailID)
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter ListFilter) (*internal.PaginatedResult[ProductResponse], error) {
	rows, count, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, err
	}

	data := make([]ProductResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, FromDataModel(row).ToResponse())
	}
	return &internal.PaginatedResult[ProductResponse]{Data: data, Count: count}, nil
}

// SetThumbnail uploads a new image for the product and drops the old one.
func (s *Service) SetThumbnail(ctx context.Context, id int64, contentType string, body io.Reader) (*Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	obj, err := s.thumbnails.Upload(ctx, contentType, body)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.SetThumbnail(ctx, id, *obj)
	if err != nil {
		s.removeThumbnail(ctx, obj.ID)
		return nil, err
	}
	s.removeThumbnail(ctx, previous)

	s.logger.Info("product thumbnail set", "product_id", id, "thumbnail_id", obj.ID)
	return s.GetProduct(ctx, id)
}

func (s *Service) removeThumbnail(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.thumbnails.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to remove thumbnail", "error", err, "thumbnail_id", key)
	}
}
