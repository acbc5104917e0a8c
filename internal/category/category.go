package category

import (
	"strings"
	"time"

	"github.com/frahmantamala/school-store/internal"
	categoryDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/category"
)

const ListCacheKey = "catalog:categories"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrCategoryNotFound  = internal.NewNotFoundError("category not found", internal.ErrCodeUnknownCategory)
	ErrDuplicateCategory = internal.NewValidationError("category already exists", internal.ErrCodeDuplicateCategory)
)

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
	}
}

func NewCategory(name string, now time.Time) *Category {
	return &Category{
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
	}
}

// NormalizeName is the case-insensitive uniqueness key.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:             c.ID,
		Name:           c.Name,
		NormalizedName: NormalizeName(c.Name),
		CreatedAt:      c.CreatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}
