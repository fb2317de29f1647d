package favourites

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

// FavouriteDTO is one saved product with its live price and availability.
type FavouriteDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Slug        string    `json:"slug"`
	Price       int       `json:"price"`
	InStock     bool      `json:"in_stock"`
}

type productChecker interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages the customer's saved products list.
type Service interface {
	Add(ctx context.Context, accountID, productID uuid.UUID) error
	Remove(ctx context.Context, accountID, productID uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]FavouriteDTO, error)
}

// ServiceParams bundles the dependencies required to build a favourites service.
type ServiceParams struct {
	Repo     Repository
	Products productChecker
}

type service struct {
	repo     Repository
	products productChecker
}

// NewService constructs a favourites service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("favourites repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product checker is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

func (s *service) Add(ctx context.Context, accountID, productID uuid.UUID) error {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	if !product.IsApproved || !product.IsAvailable {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	err = s.repo.Create(ctx, &models.FavouriteItem{AccountID: accountID, ProductID: productID})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_favourite_account_product") {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is already in favourites")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save favourite")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, accountID, productID uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, accountID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to remove favourite")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "favourite not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID) ([]FavouriteDTO, error) {
	records, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list favourites")
	}
	dtos := make([]FavouriteDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, FavouriteDTO{
			ProductID:   rec.ProductID,
			ProductName: rec.ProductName,
			Slug:        rec.Slug,
			Price:       rec.MinPrice,
			InStock:     rec.InStock,
		})
	}
	return dtos, nil
}
