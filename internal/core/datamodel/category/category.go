package category

import "time"

type Category struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	NormalizedName string    `gorm:"column:normalized_name;uniqueIndex;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (Category) TableName() string {
	return "categories"
}
