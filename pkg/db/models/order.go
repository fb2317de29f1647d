package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

// Order is the immutable record created once at finalize. Address, totals
// and discounts are snapshots; later catalog edits never touch them.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID     uuid.UUID           `gorm:"column:account_id;type:uuid;not null;index"`
	AddressText   string              `gorm:"column:address_text;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentID     *string             `gorm:"column:payment_id"`
	Subtotal      int                 `gorm:"column:subtotal;not null"`
	Discount      int                 `gorm:"column:discount;not null;default:0"`
	Total         int                 `gorm:"column:total;not null"`
	CouponID      *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	IsPaid        bool                `gorm:"column:is_paid;not null;default:false"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
