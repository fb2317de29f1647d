package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.IncOrderPlaced("wallet", 900)
	metrics.IncPaymentFailure("razorpay", "signature_mismatch")
	metrics.IncWalletRefund()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "orders_placed_total", "method", "wallet"); err != nil {
		t.Fatalf("fetch orders placed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected orders_placed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_failures_total", "method", "razorpay"); err != nil {
		t.Fatalf("fetch payment failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected payment_failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_value"); err != nil {
		t.Fatalf("fetch order value: %v", err)
	} else if got != 900 {
		t.Fatalf("expected order_value sum 900, got %f", got)
	}
}

func TestCheckoutMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewCheckoutMetrics(nil)
	metrics.IncOrderPlaced("COD", 500)
	metrics.IncPaymentFailure("wallet", "insufficient_balance")
	metrics.IncWalletRefund()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetHistogram().GetSampleSum(), nil
	}
	return 0, fmt.Errorf("histogram %q has no samples", name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
