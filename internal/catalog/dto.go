package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
)

// CategoryRequest is the admin payload for category writes.
type CategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	IsActive *bool  `json:"is_active"`
}

// CategoryDTO is the category projection.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

// ProductRequest is the admin payload for product writes.
type ProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	IsApproved  *bool     `json:"is_approved"`
	IsAvailable *bool     `json:"is_available"`
}

// InventoryRequest is the admin payload for a product size row.
type InventoryRequest struct {
	Size  string `json:"size" validate:"required"`
	Price int    `json:"price" validate:"required,gt=0"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// InventoryDTO is the sellable unit projection.
type InventoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Size     string    `json:"size"`
	Price    int       `json:"price"`
	Stock    int       `json:"stock"`
	IsActive bool      `json:"is_active"`
}

// ProductSummary is the storefront listing row. Price is the lowest active
// inventory price.
type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Price        int       `json:"price"`
	InStock      bool      `json:"in_stock"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductDetail is the full storefront product view.
type ProductDetail struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	CategoryID  uuid.UUID      `json:"category_id"`
	Sizes       []InventoryDTO `json:"sizes"`
}

// ProductPage is a cursor-paginated product listing.
type ProductPage struct {
	Items      []ProductSummary `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func categoryToDTO(c *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		IsActive: c.IsActive,
	}
}

func inventoryToDTO(inv *models.Inventory) InventoryDTO {
	return InventoryDTO{
		ID:       inv.ID,
		Size:     inv.Size,
		Price:    inv.Price,
		Stock:    inv.Stock,
		IsActive: inv.IsActive,
	}
}

func productToDetail(p *models.Product) ProductDetail {
	detail := ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		CategoryID:  p.CategoryID,
	}
	for i := range p.Inventories {
		if p.Inventories[i].IsActive {
			detail.Sizes = append(detail.Sizes, inventoryToDTO(&p.Inventories[i]))
		}
	}
	return detail
}
