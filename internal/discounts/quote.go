package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// Coupon failure modes surface separately so the checkout UI can explain
// exactly why a code was refused.
var (
	ErrCouponNotFound   = errors.New("coupon code does not exist")
	ErrCouponInactive   = errors.New("coupon is no longer active")
	ErrCouponExhausted  = errors.New("coupon has no redemptions left")
	ErrBelowMinPurchase = errors.New("order total is below the coupon minimum purchase")
	ErrCouponReapplied  = errors.New("coupon is already applied to this checkout")
)

type offerSource interface {
	ActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type couponSource interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Line is one priced cart line entering the quote.
type Line struct {
	CategoryID uuid.UUID
	Amount     int
}

// Quote is the discount breakdown for a checkout attempt. All amounts are
// whole currency units; Total never goes below zero.
type Quote struct {
	Subtotal       int
	OfferDiscount  int
	CouponDiscount int
	Discount       int
	Total          int
	CouponID       *uuid.UUID
	CouponCode     string
}

// Quoter prices a set of cart lines: category offers apply per line first,
// then an optional flat coupon on the discounted total.
type Quoter struct {
	offers  offerSource
	coupons couponSource
}

// NewQuoter constructs a quoter over the provided discount sources.
func NewQuoter(offers offerSource, coupons couponSource) (*Quoter, error) {
	if offers == nil {
		return nil, fmt.Errorf("offer source is required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon source is required")
	}
	return &Quoter{offers: offers, coupons: coupons}, nil
}

// Quote computes the discount breakdown. An empty couponCode skips the
// coupon stage entirely.
func (q *Quoter) Quote(ctx context.Context, lines []Line, couponCode string) (*Quote, error) {
	quote := &Quote{}
	if len(lines) == 0 {
		return quote, nil
	}

	categoryIDs := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		quote.Subtotal += line.Amount
		if _, ok := seen[line.CategoryID]; !ok {
			seen[line.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, line.CategoryID)
		}
	}

	percents, err := q.offers.ActiveByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load category offers")
	}
	for _, line := range lines {
		percent, ok := percents[line.CategoryID]
		if !ok || percent <= 0 {
			continue
		}
		quote.OfferDiscount += offerAmount(line.Amount, percent)
	}

	afterOffers := quote.Subtotal - quote.OfferDiscount
	if afterOffers < 0 {
		afterOffers = 0
	}

	if code := strings.TrimSpace(couponCode); code != "" {
		coupon, err := q.resolveCoupon(ctx, code, afterOffers)
		if err != nil {
			return nil, err
		}
		quote.CouponDiscount = coupon.Discount
		if quote.CouponDiscount > afterOffers {
			quote.CouponDiscount = afterOffers
		}
		id := coupon.ID
		quote.CouponID = &id
		quote.CouponCode = coupon.Code
	}

	quote.Discount = quote.OfferDiscount + quote.CouponDiscount
	quote.Total = quote.Subtotal - quote.Discount
	if quote.Total < 0 {
		quote.Total = 0
	}
	return quote, nil
}

func (q *Quoter) resolveCoupon(ctx context.Context, code string, afterOffers int) (*models.Coupon, error) {
	coupon, err := q.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrCouponNotFound, ErrCouponNotFound.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load coupon")
	}
	if !coupon.IsActive {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrCouponInactive, ErrCouponInactive.Error())
	}
	if coupon.Quantity < 1 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrCouponExhausted, ErrCouponExhausted.Error())
	}
	if afterOffers < coupon.MinPurchase {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrBelowMinPurchase, ErrBelowMinPurchase.Error())
	}
	return coupon, nil
}

// offerAmount rounds the percentage cut to the nearest whole unit.
func offerAmount(amount, percent int) int {
	cut := decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return int(cut.IntPart())
}
