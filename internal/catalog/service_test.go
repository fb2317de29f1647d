package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/pagination"
)

type fakeCatalogRepo struct {
	mu          sync.Mutex
	categories  map[uuid.UUID]*models.Category
	products    map[uuid.UUID]*models.Product
	inventories map[uuid.UUID]*models.Inventory
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		categories:  make(map[uuid.UUID]*models.Category),
		products:    make(map[uuid.UUID]*models.Product),
		inventories: make(map[uuid.UUID]*models.Inventory),
	}
}

func (f *fakeCatalogRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCatalogRepo) CreateCategory(_ context.Context, category *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Slug == category.Slug && !existing.DeletedAt.Valid {
			return nil, duplicateKeyErr{}
		}
	}
	category.ID = uuid.New()
	category.CreatedAt = time.Now().UTC()
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeCatalogRepo) UpdateCategory(_ context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCatalogRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if category, ok := f.categories[id]; ok {
		category.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	}
	return nil
}

func (f *fakeCatalogRepo) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category, ok := f.categories[id]
	if !ok || category.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (f *fakeCatalogRepo) ListCategories(_ context.Context, activeOnly bool) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, category := range f.categories {
		if category.DeletedAt.Valid {
			continue
		}
		if activeOnly && !category.IsActive {
			continue
		}
		out = append(out, *category)
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.products {
		if existing.Slug == product.Slug && !existing.DeletedAt.Valid {
			return nil, duplicateKeyErr{}
		}
	}
	product.ID = uuid.New()
	product.CreatedAt = time.Now().UTC()
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeCatalogRepo) UpdateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product, ok := f.products[id]; ok {
		product.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	}
	return nil
}

func (f *fakeCatalogRepo) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok || product.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return f.withInventories(product), nil
}

func (f *fakeCatalogRepo) FindProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, product := range f.products {
		if product.Slug == slug && !product.DeletedAt.Valid {
			return f.withInventories(product), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepo) withInventories(product *models.Product) *models.Product {
	clone := *product
	clone.Inventories = nil
	for _, inventory := range f.inventories {
		if inventory.ProductID == product.ID {
			clone.Inventories = append(clone.Inventories, *inventory)
		}
	}
	return &clone
}

func (f *fakeCatalogRepo) ListStorefront(_ context.Context, categoryID *uuid.UUID, cursor string, limit int) ([]storefrontRecord, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []storefrontRecord
	for _, product := range f.products {
		if product.DeletedAt.Valid || !product.IsApproved || !product.IsAvailable {
			continue
		}
		if categoryID != nil && product.CategoryID != *categoryID {
			continue
		}
		category, ok := f.categories[product.CategoryID]
		if !ok || !category.IsActive || category.DeletedAt.Valid {
			continue
		}
		minPrice, totalStock := 0, 0
		for _, inventory := range f.inventories {
			if inventory.ProductID != product.ID || !inventory.IsActive || inventory.Stock <= 0 {
				continue
			}
			if minPrice == 0 || inventory.Price < minPrice {
				minPrice = inventory.Price
			}
			totalStock += inventory.Stock
		}
		if totalStock == 0 {
			continue
		}
		records = append(records, storefrontRecord{
			ID:           product.ID,
			Name:         product.Name,
			Slug:         product.Slug,
			CategoryID:   product.CategoryID,
			CategoryName: category.Name,
			MinPrice:     minPrice,
			TotalStock:   totalStock,
			CreatedAt:    product.CreatedAt,
		})
	}
	return records, "", nil
}

func (f *fakeCatalogRepo) ListAllProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, product := range f.products {
		if !product.DeletedAt.Valid {
			out = append(out, *f.withInventories(product))
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateInventory(_ context.Context, inventory *models.Inventory) (*models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.inventories {
		if existing.ProductID == inventory.ProductID && existing.Size == inventory.Size {
			return nil, duplicateKeyErr{}
		}
	}
	inventory.ID = uuid.New()
	f.inventories[inventory.ID] = inventory
	return inventory, nil
}

func (f *fakeCatalogRepo) UpdateInventory(_ context.Context, inventory *models.Inventory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventories[inventory.ID] = inventory
	return nil
}

func (f *fakeCatalogRepo) FindInventoryByID(_ context.Context, id uuid.UUID) (*models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inventory, ok := f.inventories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inventory, nil
}

func (f *fakeCatalogRepo) ListInventories(_ context.Context, productID uuid.UUID) ([]models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Inventory
	for _, inventory := range f.inventories {
		if inventory.ProductID == productID {
			out = append(out, *inventory)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) SetInventoryActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inventory, ok := f.inventories[id]; ok {
		inventory.IsActive = active
	}
	return nil
}

func (f *fakeCatalogRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inventory, ok := f.inventories[id]
	if !ok || inventory.Stock < qty {
		return false, nil
	}
	inventory.Stock -= qty
	return true, nil
}

func (f *fakeCatalogRepo) IncrementStock(_ context.Context, id uuid.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inventory, ok := f.inventories[id]; ok {
		inventory.Stock += qty
	}
	return nil
}

type duplicateKeyErr struct{}

func (duplicateKeyErr) Error() string { return "UNIQUE constraint failed" }

func newCatalogService(t *testing.T) (Service, *fakeCatalogRepo) {
	t.Helper()
	repo := newFakeCatalogRepo()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func boolPtr(v bool) *bool { return &v }

func TestCreateCategorySlugAndDuplicate(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CategoryRequest{Name: "  Casual Wear "})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if created.Slug != "casual-wear" {
		t.Fatalf("slug = %q, want casual-wear", created.Slug)
	}
	if !created.IsActive {
		t.Fatal("new category should default to active")
	}

	_, err = svc.CreateCategory(ctx, CategoryRequest{Name: "Casual Wear"})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("duplicate category error = %v, want conflict", err)
	}
}

func TestCreateProductRequiresCategory(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductRequest{CategoryID: uuid.New(), Name: "Ghost Shirt"})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("missing category error = %v, want validation", err)
	}
}

func TestGetProductHidesUnapproved(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Shirts"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	product, err := svc.CreateProduct(ctx, ProductRequest{CategoryID: category.ID, Name: "Flannel Shirt"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	_, err = svc.GetProduct(ctx, product.Slug)
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unapproved product error = %v, want not found", err)
	}

	if _, err := svc.UpdateProduct(ctx, product.ID, ProductRequest{
		CategoryID: category.ID,
		Name:       "Flannel Shirt",
		IsApproved: boolPtr(true),
	}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	detail, err := svc.GetProduct(ctx, product.Slug)
	if err != nil {
		t.Fatalf("GetProduct after approval: %v", err)
	}
	if detail.Name != "Flannel Shirt" {
		t.Fatalf("detail name = %q", detail.Name)
	}
}

func TestGetProductDetailFiltersInactiveSizes(t *testing.T) {
	svc, repo := newCatalogService(t)
	ctx := context.Background()

	category, _ := svc.CreateCategory(ctx, CategoryRequest{Name: "Shirts"})
	product, err := svc.CreateProduct(ctx, ProductRequest{
		CategoryID: category.ID,
		Name:       "Denim Shirt",
		IsApproved: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	medium, err := svc.AddInventory(ctx, product.ID, InventoryRequest{Size: "m", Price: 899, Stock: 4})
	if err != nil {
		t.Fatalf("AddInventory: %v", err)
	}
	if medium.Size != "M" {
		t.Fatalf("size = %q, want normalized M", medium.Size)
	}
	large, err := svc.AddInventory(ctx, product.ID, InventoryRequest{Size: "L", Price: 949, Stock: 2})
	if err != nil {
		t.Fatalf("AddInventory: %v", err)
	}
	if err := svc.SetInventoryActive(ctx, large.ID, false); err != nil {
		t.Fatalf("SetInventoryActive: %v", err)
	}

	detail, err := svc.GetProduct(ctx, product.Slug)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if len(detail.Sizes) != 1 || detail.Sizes[0].Size != "M" {
		t.Fatalf("sizes = %+v, want only active M", detail.Sizes)
	}
	_ = repo
}

func TestAddInventoryDuplicateSize(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	category, _ := svc.CreateCategory(ctx, CategoryRequest{Name: "Shirts"})
	product, _ := svc.CreateProduct(ctx, ProductRequest{CategoryID: category.ID, Name: "Polo"})

	if _, err := svc.AddInventory(ctx, product.ID, InventoryRequest{Size: "M", Price: 500, Stock: 3}); err != nil {
		t.Fatalf("AddInventory: %v", err)
	}
	_, err := svc.AddInventory(ctx, product.ID, InventoryRequest{Size: " m ", Price: 550, Stock: 1})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("duplicate size error = %v, want conflict", err)
	}
}

func TestInventoryValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	category, _ := svc.CreateCategory(ctx, CategoryRequest{Name: "Shirts"})
	product, _ := svc.CreateProduct(ctx, ProductRequest{CategoryID: category.ID, Name: "Henley"})

	cases := []struct {
		name string
		req  InventoryRequest
	}{
		{"missing size", InventoryRequest{Price: 100, Stock: 1}},
		{"zero price", InventoryRequest{Size: "M", Price: 0, Stock: 1}},
		{"negative stock", InventoryRequest{Size: "M", Price: 100, Stock: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddInventory(ctx, product.ID, tc.req)
			domainErr := pkgerrors.As(err)
			if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("error = %v, want validation", err)
			}
		})
	}
}

func TestListProductsProjection(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	category, _ := svc.CreateCategory(ctx, CategoryRequest{Name: "Shirts"})
	product, _ := svc.CreateProduct(ctx, ProductRequest{
		CategoryID: category.ID,
		Name:       "Linen Shirt",
		IsApproved: boolPtr(true),
	})
	if _, err := svc.AddInventory(ctx, product.ID, InventoryRequest{Size: "S", Price: 999, Stock: 1}); err != nil {
		t.Fatalf("AddInventory: %v", err)
	}
	if _, err := svc.AddInventory(ctx, product.ID, InventoryRequest{Size: "M", Price: 799, Stock: 2}); err != nil {
		t.Fatalf("AddInventory: %v", err)
	}

	page, err := svc.ListProducts(ctx, nil, pagination.Params{})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(page.Items))
	}
	item := page.Items[0]
	if item.Price != 799 || !item.InStock {
		t.Fatalf("item = %+v, want min price 799 in stock", item)
	}
	if !strings.EqualFold(item.CategoryName, "Shirts") {
		t.Fatalf("category name = %q", item.CategoryName)
	}
}
