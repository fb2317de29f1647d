package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// CouponRequest is the admin payload for coupon writes.
type CouponRequest struct {
	Code        string `json:"code" validate:"required"`
	Discount    int    `json:"discount" validate:"required,gt=0"`
	MinPurchase int    `json:"min_purchase" validate:"gte=0"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

// CouponDTO is the coupon projection.
type CouponDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Discount    int       `json:"discount"`
	MinPurchase int       `json:"min_purchase"`
	Quantity    int       `json:"quantity"`
	IsActive    bool      `json:"is_active"`
}

// Service is the admin surface for coupon management.
type Service interface {
	Create(ctx context.Context, req CouponRequest) (*CouponDTO, error)
	Update(ctx context.Context, id uuid.UUID, req CouponRequest) (*CouponDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]CouponDTO, error)
}

// ServiceParams bundles the dependencies required to build a coupon service.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService constructs a coupon service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("coupon repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateRequest(req CouponRequest) error {
	if normalizeCode(req.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if req.Discount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be greater than zero")
	}
	if req.MinPurchase < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum purchase cannot be negative")
	}
	if req.MinPurchase > 0 && req.Discount >= req.MinPurchase {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be smaller than the minimum purchase")
	}
	if req.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CouponRequest) (*CouponDTO, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	coupon := &models.Coupon{
		Code:        normalizeCode(req.Code),
		Discount:    req.Discount,
		MinPurchase: req.MinPurchase,
		Quantity:    req.Quantity,
		IsActive:    true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_coupons_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a coupon with this code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create coupon")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req CouponRequest) (*CouponDTO, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load coupon")
	}
	coupon.Code = normalizeCode(req.Code)
	coupon.Discount = req.Discount
	coupon.MinPurchase = req.MinPurchase
	coupon.Quantity = req.Quantity
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "idx_coupons_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a coupon with this code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update coupon")
	}
	dto := toDTO(coupon)
	return &dto, nil
}

// Deactivate retires a coupon without deleting it so past orders keep
// their reference.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load coupon")
	}
	if !coupon.IsActive {
		return nil
	}
	coupon.IsActive = false
	if err := s.repo.Update(ctx, coupon); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to deactivate coupon")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list coupons")
	}
	dtos := make([]CouponDTO, 0, len(coupons))
	for i := range coupons {
		dtos = append(dtos, toDTO(&coupons[i]))
	}
	return dtos, nil
}

func toDTO(c *models.Coupon) CouponDTO {
	return CouponDTO{
		ID:          c.ID,
		Code:        c.Code,
		Discount:    c.Discount,
		MinPurchase: c.MinPurchase,
		Quantity:    c.Quantity,
		IsActive:    c.IsActive,
	}
}
