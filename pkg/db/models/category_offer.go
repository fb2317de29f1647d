package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryOffer is a percentage discount applied per line to every product
// in a category. At most one offer per category.
type CategoryOffer struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex"`
	Percent    int       `gorm:"column:percent;not null"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
