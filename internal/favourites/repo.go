package favourites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
)

// Repository persists the per-customer saved products list.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.FavouriteItem) error
	Delete(ctx context.Context, accountID, productID uuid.UUID) (bool, error)
	Exists(ctx context.Context, accountID, productID uuid.UUID) (bool, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]favouriteRecord, error)
}

type favouriteRecord struct {
	ProductID   uuid.UUID `gorm:"column:product_id"`
	ProductName string    `gorm:"column:product_name"`
	Slug        string    `gorm:"column:slug"`
	MinPrice    int       `gorm:"column:min_price"`
	InStock     bool      `gorm:"column:in_stock"`
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

func (r *repository) Create(ctx context.Context, item *models.FavouriteItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Delete(ctx context.Context, accountID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("account_id = ? AND product_id = ?", accountID, productID).
		Delete(&models.FavouriteItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Exists(ctx context.Context, accountID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FavouriteItem{}).
		Where("account_id = ? AND product_id = ?", accountID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByAccount joins live product data so the saved list shows current
// price and availability, not a stale snapshot.
func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]favouriteRecord, error) {
	var records []favouriteRecord
	err := r.db.WithContext(ctx).
		Table("favourite_items f").
		Select("f.product_id, p.name AS product_name, p.slug, COALESCE(MIN(CASE WHEN i.is_active AND i.stock > 0 THEN i.price END), 0) AS min_price, COALESCE(SUM(CASE WHEN i.is_active THEN i.stock ELSE 0 END), 0) > 0 AS in_stock").
		Joins("JOIN products p ON p.id = f.product_id AND p.deleted_at IS NULL").
		Joins("LEFT JOIN inventories i ON i.product_id = p.id").
		Where("f.account_id = ?", accountID).
		Group("f.product_id, p.name, p.slug").
		Order("MAX(f.created_at) DESC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
