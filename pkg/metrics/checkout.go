package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes for the payment and order pipeline.
type CheckoutMetrics struct {
	ordersPlaced   *prometheus.CounterVec
	paymentFailure *prometheus.CounterVec
	walletRefunds  prometheus.Counter
	orderValue     prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders finalized, by payment method.",
	}, []string{"method"})
	paymentFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_failures_total",
		Help: "Payment attempts that did not produce an order.",
	}, []string{"method", "reason"})
	walletRefunds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wallet_refunds_total",
		Help: "Wallet credits issued for cancellations and returns.",
	})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_value",
		Help:    "Final order totals in whole currency units.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000},
	})
	reg.MustRegister(ordersPlaced, paymentFailure, walletRefunds, orderValue)
	return &CheckoutMetrics{
		ordersPlaced:   ordersPlaced,
		paymentFailure: paymentFailure,
		walletRefunds:  walletRefunds,
		orderValue:     orderValue,
	}
}

// IncOrderPlaced increments the placed counter and records the order total.
func (c *CheckoutMetrics) IncOrderPlaced(method string, total int) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(normalizeLabel(method)).Inc()
	c.orderValue.Observe(float64(total))
}

// IncPaymentFailure increments the failure counter for the method/reason pair.
func (c *CheckoutMetrics) IncPaymentFailure(method, reason string) {
	if c == nil || c.paymentFailure == nil {
		return
	}
	c.paymentFailure.WithLabelValues(normalizeLabel(method), normalizeLabel(reason)).Inc()
}

// IncWalletRefund counts a wallet credit issued on cancel or return.
func (c *CheckoutMetrics) IncWalletRefund() {
	if c == nil || c.walletRefunds == nil {
		return
	}
	c.walletRefunds.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
