package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/pagination"
)

// Window selects a reporting period relative to the current time.
type Window string

const (
	WindowToday    Window = "today"
	WindowWeek     Window = "1w"
	WindowMonth    Window = "1m"
	WindowHalfYear Window = "6m"
	WindowYear     Window = "1y"
	WindowCustom   Window = "custom"
)

const dateLayout = "2006-01-02"

// SalesRequest describes the window and the page of line items wanted.
// From and To are only read when Window is "custom".
type SalesRequest struct {
	Window Window `json:"window"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// SaleLine is one sold order line inside the window.
type SaleLine struct {
	ProductName string    `json:"product_name"`
	Size        string    `json:"size"`
	UnitPrice   int       `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Amount      int       `json:"amount"`
	SoldAt      time.Time `json:"sold_at"`
}

// SalesReport carries window totals plus one page of the lines behind them.
type SalesReport struct {
	From      time.Time  `json:"from"`
	To        time.Time  `json:"to"`
	Revenue   int        `json:"revenue"`
	LineCount int64      `json:"line_count"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
	Lines     []SaleLine `json:"lines"`
}

type salesSource interface {
	ItemsInRange(ctx context.Context, from, to time.Time, offset, limit int) ([]models.OrderItem, error)
	RangeTotals(ctx context.Context, from, to time.Time) (int, int64, error)
}

// Service produces admin sales reports.
type Service interface {
	Sales(ctx context.Context, req SalesRequest) (*SalesReport, error)
}

// ServiceParams bundles the dependencies required to build a reports service.
type ServiceParams struct {
	Orders salesSource
	Now    func() time.Time
}

type service struct {
	orders salesSource
	now    func() time.Time
}

// NewService constructs a reports service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("sales source is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{orders: params.Orders, now: now}, nil
}

// Sales resolves the window, sums revenue over every line in it and pages
// through the lines themselves. Amounts come from order snapshots, so later
// price edits never rewrite history.
func (s *service) Sales(ctx context.Context, req SalesRequest) (*SalesReport, error) {
	from, to, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	revenue, count, err := s.orders.RangeTotals(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to total sales window")
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := pagination.NormalizeLimit(req.Limit)

	items, err := s.orders.ItemsInRange(ctx, from, to, (page-1)*limit, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list sales window")
	}

	lines := make([]SaleLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, SaleLine{
			ProductName: item.ProductName,
			Size:        item.Size,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Amount:      item.UnitPrice * item.Quantity,
			SoldAt:      item.CreatedAt,
		})
	}

	return &SalesReport{
		From:      from,
		To:        to,
		Revenue:   revenue,
		LineCount: count,
		Page:      page,
		Limit:     limit,
		Lines:     lines,
	}, nil
}

func (s *service) resolveWindow(req SalesRequest) (time.Time, time.Time, error) {
	now := s.now().UTC()

	switch req.Window {
	case WindowToday:
		return startOfDay(now), now, nil
	case WindowWeek:
		return now.AddDate(0, 0, -7), now, nil
	case WindowMonth:
		return now.AddDate(0, -1, 0), now, nil
	case WindowHalfYear:
		return now.AddDate(0, -6, 0), now, nil
	case WindowYear:
		return now.AddDate(-1, 0, 0), now, nil
	case WindowCustom:
		return customWindow(req, now)
	}
	return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown report window")
}

func customWindow(req SalesRequest, now time.Time) (time.Time, time.Time, error) {
	if req.From == "" || req.To == "" {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "custom window requires from and to dates")
	}
	from, err := time.ParseInLocation(dateLayout, req.From, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be a YYYY-MM-DD date")
	}
	to, err := time.ParseInLocation(dateLayout, req.To, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must be a YYYY-MM-DD date")
	}
	// the To date is inclusive
	to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if from.After(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if from.After(now) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "window cannot start in the future")
	}
	if to.After(now) {
		to = now
	}
	return from, to, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
