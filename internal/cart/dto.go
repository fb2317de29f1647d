package cart

import "github.com/google/uuid"

// AddItemRequest adds one size row to the cart.
type AddItemRequest struct {
	InventoryID uuid.UUID `json:"inventory_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest replaces the quantity on an existing line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// LineDTO is one cart line priced from live inventory data.
type LineDTO struct {
	ItemID      uuid.UUID `json:"item_id"`
	InventoryID uuid.UUID `json:"inventory_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Size        string    `json:"size"`
	UnitPrice   int       `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   int       `json:"line_total"`
	Stock       int       `json:"stock"`
	Available   bool      `json:"available"`
}

// CartDTO is the customer's basket with a derived subtotal. Lines whose
// inventory went inactive or out of stock stay visible but are flagged
// unavailable and excluded from the subtotal.
type CartDTO struct {
	ID       uuid.UUID `json:"id"`
	Lines    []LineDTO `json:"lines"`
	Subtotal int       `json:"subtotal"`
}
