package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

// OrderItem captures the per-line snapshot at finalize time. ProductName,
// Size and UnitPrice are copied so catalog edits cannot rewrite history.
type OrderItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	InventoryID uuid.UUID             `gorm:"column:inventory_id;type:uuid;not null"`
	ProductName string                `gorm:"column:product_name;not null"`
	Size        string                `gorm:"column:size;not null"`
	UnitPrice   int                   `gorm:"column:unit_price;not null"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	Status      enums.OrderItemStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
