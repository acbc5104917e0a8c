package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-store/internal"
	categoryDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	// DeleteCascade detaches orders, deletes the category's products and the
	// category in one transaction. It returns the removed thumbnail keys.
	DeleteCascade(ctx context.Context, id int64) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type ThumbnailRemover interface {
	Remove(ctx context.Context, key string) error
}

type Service struct {
	repo       RepositoryAPI
	cache      Cache
	thumbnails ThumbnailRemover
	clock      internal.Clock
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, cache Cache, thumbnails ThumbnailRemover, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		thumbnails: thumbnails,
		clock:      internal.SystemClock{},
		logger:     logger,
	}
}

// GetAllCategories returns categories sorted by name, served from cache when warm.
func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	var cached []CategoryResponse
	if s.cache != nil && s.cache.Get(ctx, ListCacheKey, &cached) {
		return cached, nil
	}

	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		responses = append(responses, FromDataModel(dataCategory).ToResponse())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ListCacheKey, responses); err != nil {
			s.logger.Warn("failed to cache categories", "error", err)
		}
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses, nil
}

func (s *Service) AddCategory(ctx context.Context, dto CreateCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := NewCategory(dto.Name, s.clock.Now())

	existing, err := s.repo.GetByName(ctx, c.Name)
	if err != nil {
		s.logger.Error("failed to check category name", "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCategory.WithMessage(fmt.Sprintf("category %q already exists", c.Name))
	}

	data := ToDataModel(c)
	if err := s.repo.Create(ctx, data); err != nil {
		if internalErr, ok := internal.IsAppError(err); ok && internalErr.Code == internal.ErrCodeDuplicateCategory {
			return nil, err
		}
		s.logger.Error("failed to create category", "error", err, "name", c.Name)
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("category created", "category_id", data.ID, "name", data.Name)
	return FromDataModel(data), nil
}

// DeleteCategory removes the category, its products, and detaches their
// orders. Thumbnails are cleaned up after commit.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	thumbnails, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		if internalErr, ok := internal.IsAppError(err); !ok || internalErr.Type != internal.ErrorTypeNotFound {
			s.logger.Error("failed to delete category", "error", err, "category_id", id)
		}
		return err
	}

	s.invalidate(ctx)
	s.removeThumbnails(ctx, thumbnails)

	s.logger.Info("category deleted", "category_id", id, "removed_thumbnails", len(thumbnails))
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return FromDataModel(c), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ListCacheKey); err != nil {
		s.logger.Warn("failed to invalidate category cache", "error", err)
	}
}

func (s *Service) removeThumbnails(ctx context.Context, keys []string) {
	if s.thumbnails == nil {
		return
	}
	for _, key := range keys {
		if err := s.thumbnails.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove thumbnail", "error", err, "thumbnail_id", key)
		}
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(c internal.Clock) *Service {
	s.clock = c
	return s
}
