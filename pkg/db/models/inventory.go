package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the sellable unit: one product in one size with its own
// price and stock. Prices are whole currency units.
type Inventory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_product_size"`
	Size      string    `gorm:"column:size;not null;uniqueIndex:idx_inventory_product_size"`
	Price     int       `gorm:"column:price;not null"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
