package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents the canonical identity entity. Rows only exist for
// verified signups; pending registrations live in redis until activation.
type Account struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Mobile       *string    `gorm:"column:mobile"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsAdmin      bool       `gorm:"column:is_admin;not null;default:false"`
	IsBlocked    bool       `gorm:"column:is_blocked;not null;default:false"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
