package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

// WalletTransaction is the ledger entry behind every balance movement.
// Reference identifies the source (order id, gateway payment id).
type WalletTransaction struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID  uuid.UUID          `gorm:"column:wallet_id;type:uuid;not null;index"`
	Type      enums.WalletTxType `gorm:"column:type;not null"`
	Amount    int                `gorm:"column:amount;not null"`
	Reference string             `gorm:"column:reference;not null;default:''"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
