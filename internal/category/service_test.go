package category_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/category"
	categoryDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/category"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockCategoryRepository struct {
	categories []*categoryDatamodel.Category
	thumbnails map[int64][]string
	getAllHits int
	shouldFail bool
}

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	m.getAllHits++
	if m.shouldFail {
		return nil, errors.New("database down")
	}
	return m.categories, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error) {
	for _, c := range m.categories {
		if c.NormalizedName == category.NormalizeName(name) {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *categoryDatamodel.Category) error {
	c.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, c)
	return nil
}

func (m *mockCategoryRepository) DeleteCascade(ctx context.Context, id int64) ([]string, error) {
	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return m.thumbnails[id], nil
		}
	}
	return nil, category.ErrCategoryNotFound
}

type mapCache struct {
	values map[string][]byte
}

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, ok := c.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

type recordingRemover struct {
	removed    []string
	shouldFail bool
}

func (r *recordingRemover) Remove(ctx context.Context, key string) error {
	r.removed = append(r.removed, key)
	if r.shouldFail {
		return errors.New("bucket unavailable")
	}
	return nil
}

var _ = Describe("Category Service", func() {
	var (
		repo    *mockCategoryRepository
		cache   *mapCache
		remover *recordingRemover
		service *category.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &mockCategoryRepository{thumbnails: make(map[int64][]string)}
		cache = &mapCache{values: make(map[string][]byte)}
		remover = &recordingRemover{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = category.NewService(repo, cache, remover, logger).
			WithClock(internal.FixedClock{At: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)})
	})

	Describe("AddCategory", func() {
		It("trims the name and stamps the creation time", func() {
			c, err := service.AddCategory(ctx, category.CreateCategoryDTO{Name: "  Stationery "})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("Stationery"))
			Expect(c.CreatedAt).To(Equal(time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)))
		})

		It("rejects names differing only by case", func() {
			_, err := service.AddCategory(ctx, category.CreateCategoryDTO{Name: "Stationery"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddCategory(ctx, category.CreateCategoryDTO{Name: "STATIONERY"})
			Expect(err).To(MatchError(category.ErrDuplicateCategory))
			Expect(repo.categories).To(HaveLen(1))
		})

		It("requires a name", func() {
			_, err := service.AddCategory(ctx, category.CreateCategoryDTO{Name: "   "})
			Expect(err).To(HaveOccurred())
		})

		It("invalidates the cached list", func() {
			_, err := service.GetAllCategories(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.values).To(HaveKey(category.ListCacheKey))

			_, err = service.AddCategory(ctx, category.CreateCategoryDTO{Name: "Books"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.values).NotTo(HaveKey(category.ListCacheKey))

			list, err := service.GetAllCategories(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(ConsistOf(category.CategoryResponse{ID: 1, Name: "Books"}))
		})
	})

	Describe("GetAllCategories", func() {
		It("serves repeated reads from cache", func() {
			_, err := service.AddCategory(ctx, category.CreateCategoryDTO{Name: "Books"})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				list, err := service.GetAllCategories(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(list).To(HaveLen(1))
			}
			Expect(repo.getAllHits).To(Equal(1))
		})

		It("works without a cache", func() {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
			uncached := category.NewService(repo, nil, nil, logger)
			_, err := uncached.GetAllCategories(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = uncached.GetAllCategories(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.getAllHits).To(Equal(2))
		})

		It("returns repository errors", func() {
			repo.shouldFail = true
			_, err := service.GetAllCategories(ctx)
			Expect(err).To(MatchError("database down"))
		})
	})

	Describe("DeleteCategory", func() {
		BeforeEach(func() {
			_, err := service.AddCategory(ctx, category.CreateCategoryDTO{Name: "Books"})
			Expect(err).NotTo(HaveOccurred())
			repo.thumbnails[1] = []string{"thumbnails/a.png", "thumbnails/b.png"}
		})

		It("removes the product thumbnails after deleting", func() {
			Expect(service.DeleteCategory(ctx, 1)).To(Succeed())
			Expect(remover.removed).To(Equal([]string{"thumbnails/a.png", "thumbnails/b.png"}))
			Expect(repo.categories).To(BeEmpty())
		})

		It("still succeeds when thumbnail cleanup fails", func() {
			remover.shouldFail = true
			Expect(service.DeleteCategory(ctx, 1)).To(Succeed())
			Expect(remover.removed).To(HaveLen(2))
		})

		It("reports unknown categories", func() {
			err := service.DeleteCategory(ctx, 42)
			Expect(err).To(MatchError(category.ErrCategoryNotFound))
			Expect(remover.removed).To(BeEmpty())
		})
	})

	It("maps a missing id to UNKNOWN_CATEGORY", func() {
		_, err := service.GetByID(ctx, 7)
		Expect(err).To(MatchError(category.ErrCategoryNotFound))
	})
})
