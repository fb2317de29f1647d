package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a flat-amount discount with a redemption budget. Quantity is
// decremented inside the finalize transaction; delete deactivates instead
// of removing so past orders keep their link.
type Coupon struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string    `gorm:"column:code;not null;uniqueIndex"`
	Discount    int       `gorm:"column:discount;not null"`
	MinPurchase int       `gorm:"column:min_purchase;not null;default:0"`
	Quantity    int       `gorm:"column:quantity;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
