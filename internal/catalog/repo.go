package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/pagination"
)

// Repository encapsulates catalog persistence: categories, products and
// their per-size inventory rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)

	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListStorefront(ctx context.Context, categoryID *uuid.UUID, cursor string, limit int) ([]storefrontRecord, string, error)
	ListAllProducts(ctx context.Context) ([]models.Product, error)

	CreateInventory(ctx context.Context, inventory *models.Inventory) (*models.Inventory, error)
	UpdateInventory(ctx context.Context, inventory *models.Inventory) error
	FindInventoryByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
	ListInventories(ctx context.Context, productID uuid.UUID) ([]models.Inventory, error)
	SetInventoryActive(ctx context.Context, id uuid.UUID, active bool) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// Stock is the inventory surface checkout and order flows rebind into
// their own transactions, so unit moves commit with the order rows that
// caused them.
type Stock interface {
	WithTx(tx *gorm.DB) Stock
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type stock struct {
	repo Repository
}

// NewStock wraps a repository as its transaction-aware stock surface.
func NewStock(repo Repository) Stock {
	return stock{repo: repo}
}

func (s stock) WithTx(tx *gorm.DB) Stock {
	if tx == nil {
		return s
	}
	return stock{repo: s.repo.WithTx(tx)}
}

func (s stock) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	return s.repo.DecrementStock(ctx, id, qty)
}

func (s stock) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return s.repo.IncrementStock(ctx, id, qty)
}

type storefrontRecord struct {
	ID           uuid.UUID `gorm:"column:id"`
	Name         string    `gorm:"column:name"`
	Slug         string    `gorm:"column:slug"`
	CategoryID   uuid.UUID `gorm:"column:category_id"`
	CategoryName string    `gorm:"column:category_name"`
	MinPrice     int       `gorm:"column:min_price"`
	TotalStock   int       `gorm:"column:total_stock"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteCategory soft-deletes; order history referencing the category keeps
// resolving through Unscoped reads.
func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

func (r *repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventories").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventories").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListStorefront returns approved, available products in active categories
// with at least one active in-stock size, priced at the lowest active size.
func (r *repository) ListStorefront(ctx context.Context, categoryID *uuid.UUID, cursor string, limit int) ([]storefrontRecord, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	selectColumns := []string{
		"p.id",
		"p.name",
		"p.slug",
		"p.category_id",
		"c.name AS category_name",
		"MIN(i.price) AS min_price",
		"SUM(i.stock) AS total_stock",
		"p.created_at",
	}

	query := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN categories c ON c.id = p.category_id AND c.deleted_at IS NULL AND c.is_active = ?", true).
		Joins("JOIN inventories i ON i.product_id = p.id AND i.is_active = ? AND i.stock > 0", true).
		Where("p.deleted_at IS NULL AND p.is_approved = ? AND p.is_available = ?", true, true).
		Group("p.id, p.name, p.slug, p.category_id, c.name, p.created_at")

	if categoryID != nil {
		query = query.Where("p.category_id = ?", *categoryID)
	}
	if decodedCursor != nil {
		query = query.Where("(p.created_at < ?) OR (p.created_at = ? AND p.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	query = query.Order("p.created_at DESC").Order("p.id DESC").Limit(limitWithBuffer)

	var records []storefrontRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return records, nextCursor, nil
}

func (r *repository) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventories").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CreateInventory(ctx context.Context, inventory *models.Inventory) (*models.Inventory, error) {
	if inventory.ID == uuid.Nil {
		inventory.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(inventory).Error; err != nil {
		return nil, err
	}
	return inventory, nil
}

func (r *repository) UpdateInventory(ctx context.Context, inventory *models.Inventory) error {
	return r.db.WithContext(ctx).Save(inventory).Error
}

func (r *repository) FindInventoryByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	var inventory models.Inventory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inventory).Error
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}

func (r *repository) ListInventories(ctx context.Context, productID uuid.UUID) ([]models.Inventory, error) {
	var inventories []models.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("size ASC").
		Find(&inventories).Error
	if err != nil {
		return nil, err
	}
	return inventories, nil
}

func (r *repository) SetInventoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// DecrementStock is guarded so concurrent finalizes cannot oversell. The
// boolean reports whether any row changed.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
