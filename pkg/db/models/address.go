package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a deliverable address in a customer's address book. Snapshot
// holds the assembled single-line form copied onto orders at checkout.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Mobile    string    `gorm:"column:mobile;not null"`
	Pincode   string    `gorm:"column:pincode;not null"`
	House     string    `gorm:"column:house;not null"`
	Street    string    `gorm:"column:street;not null"`
	City      string    `gorm:"column:city;not null"`
	District  string    `gorm:"column:district;not null"`
	State     string    `gorm:"column:state;not null"`
	Landmark  *string   `gorm:"column:landmark"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	Snapshot  string    `gorm:"column:snapshot;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
