package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/internal/cart"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/catalog"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/coupons"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/discounts"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/orders"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/wallet"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/gateway"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/metrics"
)

const topupScope = "wallet_topup"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type addressLoader interface {
	FindAddress(ctx context.Context, accountID, addressID uuid.UUID) (*models.Address, error)
}

type gatewayClient interface {
	CreateOrder(ctx context.Context, amount int, receipt string) (*gateway.OrderIntent, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type stagingStore interface {
	contextStore
	IdempotencyKey(scope, id string) string
}

// Service drives the path from a priced cart to a persisted order.
type Service interface {
	Begin(ctx context.Context, accountID uuid.UUID, req BeginRequest) (*Summary, error)
	Current(ctx context.Context, accountID uuid.UUID) (*Summary, error)
	Dispatch(ctx context.Context, accountID uuid.UUID, req DispatchRequest) (*DispatchResult, error)
	Callback(ctx context.Context, accountID uuid.UUID, req CallbackRequest) (*DispatchResult, error)

	BeginTopUp(ctx context.Context, accountID uuid.UUID, req TopUpRequest) (*GatewayIntent, error)
	TopUpCallback(ctx context.Context, req CallbackRequest) error
}

// ServiceParams bundles the dependencies required to build a checkout
// service. The repositories must support rebinding, finalize rebinds every
// one of them into a single transaction.
type ServiceParams struct {
	Cart      cart.Repository
	Stock     catalog.Stock
	Coupons   coupons.Repository
	Orders    orders.Repository
	Addresses addressLoader
	Wallet    wallet.Payer
	Quoter    *discounts.Quoter
	Gateway   gatewayClient
	Store     stagingStore
	Tx        txRunner
	Config    config.CheckoutConfig
	Metrics   *metrics.CheckoutMetrics
}

type service struct {
	cart      cart.Repository
	stock     catalog.Stock
	coupons   coupons.Repository
	orders    orders.Repository
	addresses addressLoader
	wallet    wallet.Payer
	quoter    *discounts.Quoter
	gateway   gatewayClient
	store     stagingStore
	tx        txRunner
	cfg       config.CheckoutConfig
	metrics   *metrics.CheckoutMetrics
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock surface is required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon repository is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address loader is required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet payer is required")
	}
	if params.Quoter == nil {
		return nil, fmt.Errorf("discount quoter is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("staging store is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		cart:      params.Cart,
		stock:     params.Stock,
		coupons:   params.Coupons,
		orders:    params.Orders,
		addresses: params.Addresses,
		wallet:    params.Wallet,
		quoter:    params.Quoter,
		gateway:   params.Gateway,
		store:     params.Store,
		tx:        params.Tx,
		cfg:       params.Config,
		metrics:   params.Metrics,
	}, nil
}

// Begin prices the cart against the chosen address and coupon and stages
// the result. Calling it again replaces the staged context, except that
// the coupon already staged cannot be applied a second time.
func (s *service) Begin(ctx context.Context, accountID uuid.UUID, req BeginRequest) (*Summary, error) {
	address, err := s.addresses.FindAddress(ctx, accountID, req.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load address")
	}

	if code := strings.TrimSpace(req.CouponCode); code != "" {
		staged, stagedErr := loadContext(ctx, s.store, accountID)
		if stagedErr == nil && strings.EqualFold(staged.CouponCode, code) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, discounts.ErrCouponReapplied, discounts.ErrCouponReapplied.Error())
		}
	}

	lines, err := s.pricedLines(ctx, accountID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoter.Quote(ctx, lines, req.CouponCode)
	if err != nil {
		return nil, err
	}

	checkout := &Context{
		AccountID:   accountID,
		AddressText: address.Snapshot,
		CouponCode:  quote.CouponCode,
		CouponID:    quote.CouponID,
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		Total:       quote.Total,
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveContext(ctx, s.store, checkout, s.cfg.ContextTTL); err != nil {
		return nil, err
	}
	return summarize(checkout), nil
}

// Current returns the staged context for the payment selection screen.
func (s *service) Current(ctx context.Context, accountID uuid.UUID) (*Summary, error) {
	checkout, err := loadContext(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}
	return summarize(checkout), nil
}

// Dispatch routes the staged total down the chosen settlement path. COD and
// wallet finalize in place; the gateway path answers with an intent and the
// context waits for the signed callback. Any failure keeps the context so
// the customer can retry with another method.
func (s *service) Dispatch(ctx context.Context, accountID uuid.UUID, req DispatchRequest) (*DispatchResult, error) {
	if !req.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	checkout, err := loadContext(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}
	checkout.PaymentMethod = req.Method

	switch req.Method {
	case enums.PaymentMethodCOD:
		if checkout.Total > s.cfg.CODCeiling {
			s.metrics.IncPaymentFailure(string(req.Method), "cod_ceiling")
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cash on delivery is limited to orders up to %d", s.cfg.CODCeiling))
		}
		orderID, err := s.finalize(ctx, checkout)
		if err != nil {
			return nil, err
		}
		return &DispatchResult{OrderID: orderID}, nil

	case enums.PaymentMethodWallet:
		checkout.Paid = true
		orderID, err := s.finalize(ctx, checkout)
		if err != nil {
			if errors.Is(err, wallet.ErrInsufficientBalance) {
				s.metrics.IncPaymentFailure(string(req.Method), "insufficient_balance")
			} else {
				s.metrics.IncPaymentFailure(string(req.Method), "finalize_failed")
			}
			return nil, err
		}
		return &DispatchResult{OrderID: orderID}, nil

	case enums.PaymentMethodRazorpay:
		intent, err := s.gateway.CreateOrder(ctx, checkout.Total, accountID.String())
		if err != nil {
			s.metrics.IncPaymentFailure(string(req.Method), "gateway_unavailable")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create payment intent")
		}
		checkout.GatewayOrderID = intent.OrderID
		if err := saveContext(ctx, s.store, checkout, s.cfg.ContextTTL); err != nil {
			return nil, err
		}
		return &DispatchResult{Intent: &GatewayIntent{
			GatewayOrderID: intent.OrderID,
			Amount:         intent.Amount,
			Currency:       intent.Currency,
			KeyID:          intent.KeyID,
		}}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
}

// Callback settles a gateway payment. A bad signature creates nothing and
// keeps the context alive so all three methods stay on offer.
func (s *service) Callback(ctx context.Context, accountID uuid.UUID, req CallbackRequest) (*DispatchResult, error) {
	checkout, err := loadContext(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}
	if checkout.GatewayOrderID == "" || checkout.GatewayOrderID != req.GatewayOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment does not match the checkout session")
	}
	if !s.gateway.VerifySignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
		s.metrics.IncPaymentFailure(string(enums.PaymentMethodRazorpay), "signature_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment verification failed")
	}

	checkout.PaymentMethod = enums.PaymentMethodRazorpay
	checkout.Paid = true
	checkout.PaymentID = req.PaymentID
	orderID, err := s.finalize(ctx, checkout)
	if err != nil {
		return nil, err
	}
	return &DispatchResult{OrderID: orderID}, nil
}

type topupStaging struct {
	AccountID uuid.UUID `json:"account_id"`
	Amount    int       `json:"amount"`
}

// BeginTopUp opens a gateway intent for a wallet credit of the given amount.
func (s *service) BeginTopUp(ctx context.Context, accountID uuid.UUID, req TopUpRequest) (*GatewayIntent, error) {
	if req.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "top-up amount must be greater than zero")
	}
	intent, err := s.gateway.CreateOrder(ctx, req.Amount, accountID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create payment intent")
	}
	payload, err := json.Marshal(topupStaging{AccountID: accountID, Amount: req.Amount})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal top-up staging")
	}
	key := s.store.IdempotencyKey(topupScope, intent.OrderID)
	if err := s.store.Set(ctx, key, string(payload), s.cfg.ContextTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stage top-up")
	}
	return &GatewayIntent{
		GatewayOrderID: intent.OrderID,
		Amount:         intent.Amount,
		Currency:       intent.Currency,
		KeyID:          intent.KeyID,
	}, nil
}

// TopUpCallback credits the wallet once the gateway signature checks out.
// Replays are absorbed by the payment-id guard in the wallet service.
func (s *service) TopUpCallback(ctx context.Context, req CallbackRequest) error {
	key := s.store.IdempotencyKey(topupScope, req.GatewayOrderID)
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "top-up session expired, please start again")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top-up staging")
	}
	var staged topupStaging
	if err := json.Unmarshal([]byte(raw), &staged); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unmarshal top-up staging")
	}
	if !s.gateway.VerifySignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
		s.metrics.IncPaymentFailure(string(enums.PaymentMethodRazorpay), "signature_mismatch")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "payment verification failed")
	}
	if err := s.wallet.TopUp(ctx, staged.AccountID, staged.Amount, req.PaymentID); err != nil {
		return err
	}
	return s.store.Del(ctx, key)
}

// pricedLines loads the cart and refuses to proceed while any line cannot
// be fulfilled at its held quantity.
func (s *service) pricedLines(ctx context.Context, accountID uuid.UUID) ([]discounts.Line, error) {
	basket, err := s.cart.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}
	records, err := s.cart.ListLines(ctx, basket.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list cart lines")
	}
	lines, err := priceRecords(records)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func priceRecords(records []cart.LineRecord) ([]discounts.Line, error) {
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	lines := make([]discounts.Line, 0, len(records))
	for _, rec := range records {
		if !rec.IsActive || !rec.ProductLive || rec.Stock < rec.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("%s (%s) is no longer available at the requested quantity", rec.ProductName, rec.Size))
		}
		lines = append(lines, discounts.Line{
			CategoryID: rec.CategoryID,
			Amount:     rec.UnitPrice * rec.Quantity,
		})
	}
	return lines, nil
}

func (s *service) finalize(ctx context.Context, checkout *Context) (*uuid.UUID, error) {
	return s.finalizeWithID(ctx, checkout, uuid.New())
}

// finalizeWithID is the only place an order row is created. It re-reads the
// cart, reprices it, and commits the order, the stock decrements, the coupon
// redemption, the wallet debit and the cart wipe together. Every repository
// is rebound onto the transaction so a failure at any step leaves nothing
// behind. The staged context is deleted afterwards so its total cannot
// settle twice.
func (s *service) finalizeWithID(ctx context.Context, checkout *Context, orderID uuid.UUID) (*uuid.UUID, error) {
	accountID := checkout.AccountID

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cart.WithTx(tx)
		stock := s.stock.WithTx(tx)
		couponsRepo := s.coupons.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		basket, err := cartRepo.FindByAccount(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return err
		}
		records, err := cartRepo.ListLines(ctx, basket.ID)
		if err != nil {
			return err
		}
		lines, err := priceRecords(records)
		if err != nil {
			return err
		}

		quote, err := s.quoter.Quote(ctx, lines, checkout.CouponCode)
		if err != nil {
			return err
		}
		if checkout.Paid && quote.Total != checkout.Total {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "prices changed since payment, please start checkout again")
		}

		order := &models.Order{
			ID:            orderID,
			AccountID:     accountID,
			AddressText:   checkout.AddressText,
			PaymentMethod: checkout.PaymentMethod,
			Subtotal:      quote.Subtotal,
			Discount:      quote.Discount,
			Total:         quote.Total,
			CouponID:      quote.CouponID,
			IsPaid:        checkout.Paid,
			Status:        enums.OrderStatusPending,
		}
		if checkout.PaymentID != "" {
			paymentID := checkout.PaymentID
			order.PaymentID = &paymentID
		}

		for _, rec := range records {
			ok, err := stock.DecrementStock(ctx, rec.InventoryID, rec.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("%s (%s) sold out while finalizing", rec.ProductName, rec.Size))
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   rec.ProductID,
				InventoryID: rec.InventoryID,
				ProductName: rec.ProductName,
				Size:        rec.Size,
				UnitPrice:   rec.UnitPrice,
				Quantity:    rec.Quantity,
				Status:      enums.OrderItemStatusPending,
			})
		}

		if quote.CouponID != nil {
			ok, err := couponsRepo.DecrementQuantity(ctx, *quote.CouponID)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, discounts.ErrCouponExhausted, discounts.ErrCouponExhausted.Error())
			}
		}

		if checkout.PaymentMethod == enums.PaymentMethodWallet {
			if err := s.wallet.WithTx(tx).Debit(ctx, accountID, quote.Total, orderID.String()); err != nil {
				return err
			}
		}

		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return err
		}
		return cartRepo.ClearLines(ctx, basket.ID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to finalize order")
	}

	if err := clearContext(ctx, s.store, accountID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear checkout context")
	}
	s.metrics.IncOrderPlaced(string(checkout.PaymentMethod), checkout.Total)
	return &orderID, nil
}

func summarize(checkout *Context) *Summary {
	return &Summary{
		AddressText: checkout.AddressText,
		CouponCode:  checkout.CouponCode,
		Subtotal:    checkout.Subtotal,
		Discount:    checkout.Discount,
		Total:       checkout.Total,
	}
}
