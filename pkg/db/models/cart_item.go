package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one inventory line in a cart. Quantity is capped per line;
// totals are always derived from live inventory prices, never stored here.
type CartItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID      uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_item_line"`
	InventoryID uuid.UUID `gorm:"column:inventory_id;type:uuid;not null;uniqueIndex:idx_cart_item_line"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Inventory   Inventory `gorm:"foreignKey:InventoryID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
