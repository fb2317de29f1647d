package checkout

import (
	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

// BeginRequest opens a checkout attempt from the current cart.
type BeginRequest struct {
	AddressID  uuid.UUID `json:"address_id" validate:"required"`
	CouponCode string    `json:"coupon_code"`
}

// Summary mirrors the staged context back to the client.
type Summary struct {
	AddressText string `json:"address_text"`
	CouponCode  string `json:"coupon_code,omitempty"`
	Subtotal    int    `json:"subtotal"`
	Discount    int    `json:"discount"`
	Total       int    `json:"total"`
}

// DispatchRequest selects the settlement path.
type DispatchRequest struct {
	Method enums.PaymentMethod `json:"method" validate:"required"`
}

// DispatchResult is the outcome of a dispatch. Exactly one of OrderID or
// Intent is set: COD and wallet finalize immediately, the gateway path
// returns an intent and waits for the callback.
type DispatchResult struct {
	OrderID *uuid.UUID     `json:"order_id,omitempty"`
	Intent  *GatewayIntent `json:"intent,omitempty"`
}

// GatewayIntent carries what the client needs to open the payment widget.
type GatewayIntent struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int    `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// CallbackRequest is the signed payment confirmation from the gateway widget.
type CallbackRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required"`
	PaymentID      string `json:"razorpay_payment_id" validate:"required"`
	Signature      string `json:"razorpay_signature" validate:"required"`
}

// TopUpRequest opens a gateway intent for a wallet credit.
type TopUpRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}
