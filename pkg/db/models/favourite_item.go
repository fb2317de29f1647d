package models

import (
	"time"

	"github.com/google/uuid"
)

// FavouriteItem marks a product a customer saved for later. Adding the
// product to the cart removes the row.
type FavouriteItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_favourite_account_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_favourite_account_product"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
