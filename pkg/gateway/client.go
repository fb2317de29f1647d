package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/logger"
)

var (
	errKeyIDRequired  = errors.New("razorpay key id is required")
	errSecretRequired = errors.New("razorpay key secret is required")
)

// OrderIntent is the gateway-side order the client completes payment against.
// Amount is in gateway subunits (whole units times 100).
type OrderIntent struct {
	OrderID  string
	Amount   int
	Currency string
	KeyID    string
}

// Client wraps the Razorpay API client plus the signing secret.
type Client struct {
	api      *razorpay.Client
	keyID    string
	secret   string
	currency string
}

// NewClient initializes Razorpay once with the configured credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	secret := strings.TrimSpace(cfg.KeySecret)
	if secret == "" {
		return nil, errSecretRequired
	}

	api := razorpay.NewClient(keyID, secret)

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		api:      api,
		keyID:    keyID,
		secret:   secret,
		currency: cfg.Currency,
	}, nil
}

// CreateOrder registers a gateway order for the given amount in whole
// currency units. Razorpay expects subunits, so the amount is scaled by 100.
func (c *Client) CreateOrder(ctx context.Context, amount int, receipt string) (*OrderIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", amount)
	}

	data := map[string]interface{}{
		"amount":   amount * 100,
		"currency": c.currency,
		"receipt":  receipt,
	}
	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("creating razorpay order: %w", err)
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}

	return &OrderIntent{
		OrderID:  orderID,
		Amount:   amount * 100,
		Currency: c.currency,
		KeyID:    c.keyID,
	}, nil
}

// VerifySignature checks the callback signature Razorpay computes over
// "<order_id>|<payment_id>" with the key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return verify(c.secret, orderID, paymentID, signature)
}

func verify(secret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
