package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_slug ON categories (slug);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_approved INTEGER NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_slug ON products (slug);`
	inventories := `
CREATE TABLE IF NOT EXISTS inventories (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  size TEXT NOT NULL,
  price INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_product_size ON inventories (product_id, size);`

	for _, stmt := range []string{categories, products, inventories} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCategory(t *testing.T, repo Repository, name string, active bool) *models.Category {
	t.Helper()
	category, err := repo.CreateCategory(context.Background(), &models.Category{
		Name:     name,
		Slug:     slugify(name),
		IsActive: active,
	})
	require.NoError(t, err)
	return category
}

func seedProduct(t *testing.T, repo Repository, categoryID uuid.UUID, name string, createdAt time.Time) *models.Product {
	t.Helper()
	product, err := repo.CreateProduct(context.Background(), &models.Product{
		CategoryID:  categoryID,
		Name:        name,
		Slug:        slugify(name),
		IsApproved:  true,
		IsAvailable: true,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	return product
}

func seedInventory(t *testing.T, repo Repository, productID uuid.UUID, size string, price, stock int) *models.Inventory {
	t.Helper()
	inventory, err := repo.CreateInventory(context.Background(), &models.Inventory{
		ProductID: productID,
		Size:      size,
		Price:     price,
		Stock:     stock,
		IsActive:  true,
	})
	require.NoError(t, err)
	return inventory
}

func TestListStorefrontMinPriceAndFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	active := seedCategory(t, repo, "Shirts", true)
	inactive := seedCategory(t, repo, "Archive", false)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	shirt := seedProduct(t, repo, active.ID, "Linen Shirt", base)
	seedInventory(t, repo, shirt.ID, "S", 999, 4)
	seedInventory(t, repo, shirt.ID, "M", 799, 2)

	// active category but no stock anywhere, must not appear
	empty := seedProduct(t, repo, active.ID, "Sold Out Tee", base.Add(time.Minute))
	seedInventory(t, repo, empty.ID, "M", 500, 0)

	// inactive category, must not appear
	old := seedProduct(t, repo, inactive.ID, "Retired Kurta", base.Add(2*time.Minute))
	seedInventory(t, repo, old.ID, "L", 650, 3)

	records, next, err := repo.ListStorefront(ctx, nil, "", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, next)
	assert.Equal(t, shirt.ID, records[0].ID)
	assert.Equal(t, "Shirts", records[0].CategoryName)
	assert.Equal(t, 799, records[0].MinPrice)
	assert.Equal(t, 6, records[0].TotalStock)
}

func TestListStorefrontCursorPagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, repo, "Dresses", true)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		product := seedProduct(t, repo, category.ID, "Dress "+string(rune('A'+i)), base.Add(time.Duration(i)*time.Minute))
		seedInventory(t, repo, product.ID, "M", 100*(i+1), 1)
	}

	firstPage, next, err := repo.ListStorefront(ctx, nil, "", 3)
	require.NoError(t, err)
	require.Len(t, firstPage, 3)
	require.NotEmpty(t, next)
	assert.Equal(t, "Dress E", firstPage[0].Name)

	secondPage, next, err := repo.ListStorefront(ctx, nil, next, 3)
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	assert.Empty(t, next)
	assert.Equal(t, "Dress B", secondPage[0].Name)
	assert.Equal(t, "Dress A", secondPage[1].Name)
}

func TestListStorefrontCategoryFilter(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shirts := seedCategory(t, repo, "Shirts", true)
	pants := seedCategory(t, repo, "Pants", true)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	shirt := seedProduct(t, repo, shirts.ID, "Oxford Shirt", base)
	seedInventory(t, repo, shirt.ID, "M", 899, 3)
	pant := seedProduct(t, repo, pants.ID, "Chino Pant", base.Add(time.Minute))
	seedInventory(t, repo, pant.ID, "32", 1199, 2)

	records, _, err := repo.ListStorefront(ctx, &shirts.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, shirt.ID, records[0].ID)
}

func TestSoftDeleteHidesCategoryAndProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, repo, "Seasonal", true)
	product := seedProduct(t, repo, category.ID, "Rain Jacket", time.Now().UTC())
	seedInventory(t, repo, product.ID, "L", 1500, 5)

	require.NoError(t, repo.DeleteProduct(ctx, product.ID))

	_, err := repo.FindProductByID(ctx, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	records, _, err := repo.ListStorefront(ctx, nil, "", 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	// row survives for order history
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteCategory(ctx, category.ID))
	_, err = repo.FindCategoryByID(ctx, category.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDecrementStockGuard(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, repo, "Shirts", true)
	product := seedProduct(t, repo, category.ID, "Slim Shirt", time.Now().UTC())
	inventory := seedInventory(t, repo, product.ID, "M", 700, 3)

	ok, err := repo.DecrementStock(ctx, inventory.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, inventory.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "decrement past available stock must not apply")

	current, err := repo.FindInventoryByID(ctx, inventory.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Stock)

	require.NoError(t, repo.IncrementStock(ctx, inventory.ID, 2))
	current, err = repo.FindInventoryByID(ctx, inventory.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Stock)
}

func TestInventoryUniquePerSize(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, repo, "Shirts", true)
	product := seedProduct(t, repo, category.ID, "Crew Tee", time.Now().UTC())
	seedInventory(t, repo, product.ID, "M", 400, 2)

	_, err := repo.CreateInventory(ctx, &models.Inventory{
		ProductID: product.ID,
		Size:      "M",
		Price:     450,
		Stock:     1,
		IsActive:  true,
	})
	require.Error(t, err)
}
