package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// Context is the in-flight checkout attempt, staged in redis between the
// address step and finalize. It is the single source of truth for the
// amount a payment may settle; finalize deletes it so a stale total can
// never replay.
type Context struct {
	AccountID      uuid.UUID           `json:"account_id"`
	AddressText    string              `json:"address_text"`
	CouponCode     string              `json:"coupon_code,omitempty"`
	CouponID       *uuid.UUID          `json:"coupon_id,omitempty"`
	Subtotal       int                 `json:"subtotal"`
	Discount       int                 `json:"discount"`
	Total          int                 `json:"total"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method,omitempty"`
	Paid           bool                `json:"paid"`
	PaymentID      string              `json:"payment_id,omitempty"`
	GatewayOrderID string              `json:"gateway_order_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type contextStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutKey(accountID string) string
}

func saveContext(ctx context.Context, store contextStore, checkout *Context, ttl time.Duration) error {
	payload, err := json.Marshal(checkout)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal checkout context")
	}
	key := store.CheckoutKey(checkout.AccountID.String())
	if err := store.Set(ctx, key, string(payload), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stage checkout context")
	}
	return nil
}

func loadContext(ctx context.Context, store contextStore, accountID uuid.UUID) (*Context, error) {
	raw, err := store.Get(ctx, store.CheckoutKey(accountID.String()))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session expired, please start again")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout context")
	}
	var checkout Context
	if err := json.Unmarshal([]byte(raw), &checkout); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unmarshal checkout context")
	}
	return &checkout, nil
}

func clearContext(ctx context.Context, store contextStore, accountID uuid.UUID) error {
	return store.Del(ctx, store.CheckoutKey(accountID.String()))
}
