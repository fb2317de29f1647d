package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
)

// Repository persists carts and their lines. Each customer has at most one
// cart row; lines are unique per inventory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*models.Cart, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Cart, error)

	FindLine(ctx context.Context, cartID, inventoryID uuid.UUID) (*models.CartItem, error)
	FindLineByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	CreateLine(ctx context.Context, item *models.CartItem) error
	UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, itemID uuid.UUID) error
	ClearLines(ctx context.Context, cartID uuid.UUID) error

	ListLines(ctx context.Context, cartID uuid.UUID) ([]LineRecord, error)
}

type LineRecord struct {
	ItemID      uuid.UUID `gorm:"column:item_id"`
	InventoryID uuid.UUID `gorm:"column:inventory_id"`
	ProductID   uuid.UUID `gorm:"column:product_id"`
	ProductName string    `gorm:"column:product_name"`
	Size        string    `gorm:"column:size"`
	UnitPrice   int       `gorm:"column:unit_price"`
	Quantity    int       `gorm:"column:quantity"`
	Stock       int       `gorm:"column:stock"`
	IsActive    bool      `gorm:"column:is_active"`
	ProductLive bool      `gorm:"column:product_live"`
	CategoryID  uuid.UUID `gorm:"column:category_id"`
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByAccount(ctx, accountID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := &models.Cart{ID: uuid.New(), AccountID: accountID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// concurrent create for the same account loses the unique race
		if db.IsUniqueViolation(err, "idx_carts_account_id") {
			return r.FindByAccount(ctx, accountID)
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindLine(ctx context.Context, cartID, inventoryID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND inventory_id = ?", cartID, inventoryID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindLineByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateLine(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) ClearLines(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// ListLines joins live inventory and product rows so pricing always reflects
// the catalog at read time.
func (r *repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]LineRecord, error) {
	var records []LineRecord
	err := r.db.WithContext(ctx).
		Table("cart_items ci").
		Select("ci.id AS item_id, ci.inventory_id, p.id AS product_id, p.name AS product_name, i.size, i.price AS unit_price, ci.quantity, i.stock, i.is_active, (p.deleted_at IS NULL AND p.is_approved AND p.is_available) AS product_live, p.category_id").
		Joins("JOIN inventories i ON i.id = ci.inventory_id").
		Joins("JOIN products p ON p.id = i.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.created_at ASC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
