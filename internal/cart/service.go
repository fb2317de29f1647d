package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// MaxLineQuantity caps how many units of one size a single cart line holds.
const MaxLineQuantity = 10

type inventoryLoader interface {
	FindInventoryByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type favouriteRemover interface {
	Delete(ctx context.Context, accountID, productID uuid.UUID) (bool, error)
}

// Service manages the customer's basket.
type Service interface {
	Get(ctx context.Context, accountID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, accountID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	UpdateItem(ctx context.Context, accountID, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, accountID, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, accountID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo       Repository
	Catalog    inventoryLoader
	Favourites favouriteRemover
}

type service struct {
	repo       Repository
	catalog    inventoryLoader
	favourites favouriteRemover
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("inventory loader is required")
	}
	if params.Favourites == nil {
		return nil, fmt.Errorf("favourite remover is required")
	}
	return &service{
		repo:       params.Repo,
		catalog:    params.Catalog,
		favourites: params.Favourites,
	}, nil
}

func (s *service) Get(ctx context.Context, accountID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}
	return s.project(ctx, cart.ID)
}

func (s *service) AddItem(ctx context.Context, accountID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	inventory, err := s.catalog.FindInventoryByID(ctx, req.InventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "selected size is not available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load inventory")
	}
	if !inventory.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "selected size is not available")
	}
	product, err := s.catalog.FindProductByID(ctx, inventory.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	if !product.IsApproved || !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	cart, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}

	targetQty := req.Quantity
	existing, err := s.repo.FindLine(ctx, cart.ID, req.InventoryID)
	switch {
	case err == nil:
		targetQty += existing.Quantity
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart line")
	}

	if targetQty > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot hold more than %d units of one size", MaxLineQuantity))
	}
	if targetQty > inventory.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity exceeds available stock")
	}

	if existing != nil {
		if err := s.repo.UpdateLineQuantity(ctx, existing.ID, targetQty); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update cart line")
		}
	} else {
		line := &models.CartItem{CartID: cart.ID, InventoryID: req.InventoryID, Quantity: targetQty}
		if err := s.repo.CreateLine(ctx, line); err != nil {
			if db.IsUniqueViolation(err, "idx_cart_item_line") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "this size is already in the cart")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to add cart line")
		}
	}

	// a product moved into the cart leaves the favourites list
	if _, err := s.favourites.Delete(ctx, accountID, product.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update favourites")
	}

	return s.project(ctx, cart.ID)
}

func (s *service) UpdateItem(ctx context.Context, accountID, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if req.Quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot hold more than %d units of one size", MaxLineQuantity))
	}

	cart, line, err := s.ownedLine(ctx, accountID, itemID)
	if err != nil {
		return nil, err
	}

	inventory, err := s.catalog.FindInventoryByID(ctx, line.InventoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load inventory")
	}
	if req.Quantity > inventory.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity exceeds available stock")
	}

	if err := s.repo.UpdateLineQuantity(ctx, line.ID, req.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update cart line")
	}
	return s.project(ctx, cart.ID)
}

func (s *service) RemoveItem(ctx context.Context, accountID, itemID uuid.UUID) (*CartDTO, error) {
	cart, line, err := s.ownedLine(ctx, accountID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to remove cart line")
	}
	return s.project(ctx, cart.ID)
}

func (s *service) Clear(ctx context.Context, accountID uuid.UUID) error {
	cart, err := s.repo.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}
	if err := s.repo.ClearLines(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to clear cart")
	}
	return nil
}

func (s *service) ownedLine(ctx context.Context, accountID, itemID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := s.repo.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}
	line, err := s.repo.FindLineByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart line")
	}
	return cart, line, nil
}

func (s *service) project(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	records, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list cart lines")
	}
	dto := &CartDTO{ID: cartID, Lines: make([]LineDTO, 0, len(records))}
	for _, rec := range records {
		available := rec.IsActive && rec.ProductLive && rec.Stock >= rec.Quantity
		line := LineDTO{
			ItemID:      rec.ItemID,
			InventoryID: rec.InventoryID,
			ProductID:   rec.ProductID,
			ProductName: rec.ProductName,
			Size:        rec.Size,
			UnitPrice:   rec.UnitPrice,
			Quantity:    rec.Quantity,
			Stock:       rec.Stock,
			Available:   available,
		}
		if available {
			line.LineTotal = rec.UnitPrice * rec.Quantity
			dto.Subtotal += line.LineTotal
		}
		dto.Lines = append(dto.Lines, line)
	}
	return dto, nil
}
