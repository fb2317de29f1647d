package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/pagination"
)

// Service exposes the storefront browse surface and the admin catalog surface.
type Service interface {
	ListProducts(ctx context.Context, categoryID *uuid.UUID, params pagination.Params) (*ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*ProductDetail, error)
	ListActiveCategories(ctx context.Context) ([]CategoryDTO, error)

	CreateCategory(ctx context.Context, req CategoryRequest) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]CategoryDTO, error)

	CreateProduct(ctx context.Context, req ProductRequest) (*ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductDetail, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	AddInventory(ctx context.Context, productID uuid.UUID, req InventoryRequest) (*InventoryDTO, error)
	UpdateInventory(ctx context.Context, id uuid.UUID, req InventoryRequest) (*InventoryDTO, error)
	SetInventoryActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: params.Repo}, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *service) ListProducts(ctx context.Context, categoryID *uuid.UUID, params pagination.Params) (*ProductPage, error) {
	records, nextCursor, err := s.repo.ListStorefront(ctx, categoryID, params.Cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list products")
	}
	page := &ProductPage{Items: make([]ProductSummary, 0, len(records)), NextCursor: nextCursor}
	for _, rec := range records {
		page.Items = append(page.Items, ProductSummary{
			ID:           rec.ID,
			Name:         rec.Name,
			Slug:         rec.Slug,
			CategoryID:   rec.CategoryID,
			CategoryName: rec.CategoryName,
			Price:        rec.MinPrice,
			InStock:      rec.TotalStock > 0,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.repo.FindProductBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	if !product.IsApproved || !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	detail := productToDetail(product)
	return &detail, nil
}

func (s *service) ListActiveCategories(ctx context.Context) ([]CategoryDTO, error) {
	return s.listCategories(ctx, true)
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	return s.listCategories(ctx, false)
}

func (s *service) listCategories(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, categoryToDTO(&categories[i]))
	}
	return dtos, nil
}

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest) (*CategoryDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category := &models.Category{
		Name:     name,
		Slug:     slugify(name),
		IsActive: true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create category")
	}
	dto := categoryToDTO(created)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryDTO, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load category")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category.Name = name
	category.Slug = slugify(name)
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "idx_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update category")
	}
	dto := categoryToDTO(category)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load category")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete category")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, req ProductRequest) (*ProductDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if _, err := s.repo.FindCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load category")
	}
	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        name,
		Slug:        slugify(name),
		Description: strings.TrimSpace(req.Description),
		IsApproved:  false,
		IsAvailable: true,
	}
	if req.IsApproved != nil {
		product.IsApproved = *req.IsApproved
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create product")
	}
	detail := productToDetail(created)
	return &detail, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductDetail, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if req.CategoryID != product.CategoryID {
		if _, err := s.repo.FindCategoryByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load category")
		}
		product.CategoryID = req.CategoryID
	}
	product.Name = name
	product.Slug = slugify(name)
	product.Description = strings.TrimSpace(req.Description)
	if req.IsApproved != nil {
		product.IsApproved = *req.IsApproved
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update product")
	}
	detail := productToDetail(product)
	return &detail, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete product")
	}
	return nil
}

func (s *service) AddInventory(ctx context.Context, productID uuid.UUID, req InventoryRequest) (*InventoryDTO, error) {
	if err := validateInventoryRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	inventory := &models.Inventory{
		ProductID: productID,
		Size:      strings.ToUpper(strings.TrimSpace(req.Size)),
		Price:     req.Price,
		Stock:     req.Stock,
		IsActive:  true,
	}
	created, err := s.repo.CreateInventory(ctx, inventory)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_inventory_product_size") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this size already exists for the product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create inventory")
	}
	dto := inventoryToDTO(created)
	return &dto, nil
}

func (s *service) UpdateInventory(ctx context.Context, id uuid.UUID, req InventoryRequest) (*InventoryDTO, error) {
	if err := validateInventoryRequest(req); err != nil {
		return nil, err
	}
	inventory, err := s.repo.FindInventoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load inventory")
	}
	inventory.Size = strings.ToUpper(strings.TrimSpace(req.Size))
	inventory.Price = req.Price
	inventory.Stock = req.Stock
	if err := s.repo.UpdateInventory(ctx, inventory); err != nil {
		if db.IsUniqueViolation(err, "idx_inventory_product_size") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this size already exists for the product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update inventory")
	}
	dto := inventoryToDTO(inventory)
	return &dto, nil
}

func (s *service) SetInventoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.repo.FindInventoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load inventory")
	}
	if err := s.repo.SetInventoryActive(ctx, id, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update inventory")
	}
	return nil
}

func validateInventoryRequest(req InventoryRequest) error {
	if strings.TrimSpace(req.Size) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if req.Price <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if req.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}
