package offers

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

// OfferRequest is the admin payload for category offer writes.
type OfferRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Percent    int       `json:"percent" validate:"required,gte=1,lte=99"`
	IsActive   *bool     `json:"is_active"`
}

// OfferDTO is the category offer projection.
type OfferDTO struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Percent    int       `json:"percent"`
	IsActive   bool      `json:"is_active"`
}

type categoryChecker interface {
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Service is the admin surface for category offers.
type Service interface {
	Create(ctx context.Context, req OfferRequest) (*OfferDTO, error)
	Update(ctx context.Context, id uuid.UUID, req OfferRequest) (*OfferDTO, error)
	List(ctx context.Context) ([]OfferDTO, error)
}

// ServiceParams bundles the dependencies required to build an offer service.
type ServiceParams struct {
	Repo       Repository
	Categories categoryChecker
}

type service struct {
	repo       Repository
	categories categoryChecker
}

// NewService constructs an offer service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("offer repository is required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category checker is required")
	}
	return &service{repo: params.Repo, categories: params.Categories}, nil
}

func validatePercent(percent int) error {
	if percent < 1 || percent > 99 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer percent must be between 1 and 99")
	}
	return nil
}

func (s *service) Create(ctx context.Context, req OfferRequest) (*OfferDTO, error) {
	if err := validatePercent(req.Percent); err != nil {
		return nil, err
	}
	if _, err := s.categories.FindCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load category")
	}
	offer := &models.CategoryOffer{
		CategoryID: req.CategoryID,
		Percent:    req.Percent,
		IsActive:   true,
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}
	created, err := s.repo.Create(ctx, offer)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_category_offers_category_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this category already has an offer")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create offer")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req OfferRequest) (*OfferDTO, error) {
	if err := validatePercent(req.Percent); err != nil {
		return nil, err
	}
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load offer")
	}
	offer.Percent = req.Percent
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update offer")
	}
	dto := toDTO(offer)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]OfferDTO, error) {
	offers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list offers")
	}
	dtos := make([]OfferDTO, 0, len(offers))
	for i := range offers {
		dtos = append(dtos, toDTO(&offers[i]))
	}
	return dtos, nil
}

func toDTO(o *models.CategoryOffer) OfferDTO {
	return OfferDTO{
		ID:         o.ID,
		CategoryID: o.CategoryID,
		Percent:    o.Percent,
		IsActive:   o.IsActive,
	}
}
