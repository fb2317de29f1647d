package reports

import (
	"context"
	"testing"
	"time"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

type rangeCall struct {
	from, to      time.Time
	offset, limit int
}

type fakeSalesSource struct {
	items      []models.OrderItem
	revenue    int
	count      int64
	itemCalls  []rangeCall
	totalCalls []rangeCall
}

func (f *fakeSalesSource) ItemsInRange(_ context.Context, from, to time.Time, offset, limit int) ([]models.OrderItem, error) {
	f.itemCalls = append(f.itemCalls, rangeCall{from: from, to: to, offset: offset, limit: limit})
	if offset >= len(f.items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.items) {
		end = len(f.items)
	}
	return f.items[offset:end], nil
}

func (f *fakeSalesSource) RangeTotals(_ context.Context, from, to time.Time) (int, int64, error) {
	f.totalCalls = append(f.totalCalls, rangeCall{from: from, to: to})
	return f.revenue, f.count, nil
}

var reportNow = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

func newReportsService(t *testing.T, source *fakeSalesSource) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Orders: source, Now: func() time.Time { return reportNow }})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSalesTodayWindow(t *testing.T) {
	source := &fakeSalesSource{
		revenue: 2400,
		count:   3,
		items: []models.OrderItem{
			{ProductName: "Linen Shirt", Size: "M", UnitPrice: 500, Quantity: 2, CreatedAt: reportNow.Add(-time.Hour)},
			{ProductName: "Denim Jacket", Size: "L", UnitPrice: 1400, Quantity: 1, CreatedAt: reportNow.Add(-2 * time.Hour)},
		},
	}
	svc := newReportsService(t, source)

	report, err := svc.Sales(context.Background(), SalesRequest{Window: WindowToday})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	wantFrom := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if !report.From.Equal(wantFrom) || !report.To.Equal(reportNow) {
		t.Fatalf("unexpected window %v .. %v", report.From, report.To)
	}
	if report.Revenue != 2400 || report.LineCount != 3 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(report.Lines))
	}
	if report.Lines[0].Amount != 1000 {
		t.Fatalf("expected snapshot amount 1000, got %d", report.Lines[0].Amount)
	}
}

func TestSalesPresetWindows(t *testing.T) {
	cases := []struct {
		window   Window
		wantFrom time.Time
	}{
		{WindowWeek, reportNow.AddDate(0, 0, -7)},
		{WindowMonth, reportNow.AddDate(0, -1, 0)},
		{WindowHalfYear, reportNow.AddDate(0, -6, 0)},
		{WindowYear, reportNow.AddDate(-1, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(string(tc.window), func(t *testing.T) {
			source := &fakeSalesSource{}
			svc := newReportsService(t, source)
			report, err := svc.Sales(context.Background(), SalesRequest{Window: tc.window})
			if err != nil {
				t.Fatalf("Sales: %v", err)
			}
			if !report.From.Equal(tc.wantFrom) || !report.To.Equal(reportNow) {
				t.Fatalf("unexpected window %v .. %v", report.From, report.To)
			}
		})
	}
}

func TestSalesCustomWindow(t *testing.T) {
	source := &fakeSalesSource{}
	svc := newReportsService(t, source)

	report, err := svc.Sales(context.Background(), SalesRequest{
		Window: WindowCustom,
		From:   "2025-02-01",
		To:     "2025-02-28",
	})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if !report.From.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", report.From)
	}
	// the whole of Feb 28 counts
	if report.To.Day() != 28 || report.To.Hour() != 23 {
		t.Fatalf("expected inclusive end of day, got %v", report.To)
	}
}

func TestSalesCustomWindowClampsFutureEnd(t *testing.T) {
	source := &fakeSalesSource{}
	svc := newReportsService(t, source)

	report, err := svc.Sales(context.Background(), SalesRequest{
		Window: WindowCustom,
		From:   "2025-03-01",
		To:     "2025-04-01",
	})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if !report.To.Equal(reportNow) {
		t.Fatalf("expected end clamped to now, got %v", report.To)
	}
}

func TestSalesCustomWindowValidation(t *testing.T) {
	cases := []struct {
		name string
		req  SalesRequest
	}{
		{"missing dates", SalesRequest{Window: WindowCustom}},
		{"bad from", SalesRequest{Window: WindowCustom, From: "01/02/2025", To: "2025-02-10"}},
		{"bad to", SalesRequest{Window: WindowCustom, From: "2025-02-01", To: "soon"}},
		{"inverted", SalesRequest{Window: WindowCustom, From: "2025-02-10", To: "2025-02-01"}},
		{"future start", SalesRequest{Window: WindowCustom, From: "2025-06-01", To: "2025-06-30"}},
		{"unknown window", SalesRequest{Window: "fortnight"}},
	}
	svc := newReportsService(t, &fakeSalesSource{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Sales(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSalesPaging(t *testing.T) {
	items := make([]models.OrderItem, 7)
	for i := range items {
		items[i] = models.OrderItem{ProductName: "Shirt", UnitPrice: 100, Quantity: 1}
	}
	source := &fakeSalesSource{items: items, count: 7, revenue: 700}
	svc := newReportsService(t, source)

	report, err := svc.Sales(context.Background(), SalesRequest{Window: WindowWeek, Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if report.Page != 2 || report.Limit != 5 {
		t.Fatalf("unexpected paging echo: %+v", report)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("expected remaining 2 lines on page 2, got %d", len(report.Lines))
	}
	if call := source.itemCalls[0]; call.offset != 5 || call.limit != 5 {
		t.Fatalf("expected offset 5 limit 5, got %+v", call)
	}
}
