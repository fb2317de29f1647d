package controllers

import (
	"net/http"
	"strings"

	"github.com/ANANDHURAI/Amart-Marketplace/api/responses"
	"github.com/ANANDHURAI/Amart-Marketplace/api/validators"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/reports"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/logger"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/pagination"
)

// AdminSalesReport serves the sold-line report over a named window or a
// custom from/to range.
func AdminSalesReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := reports.SalesRequest{
			Window: reports.Window(strings.TrimSpace(query.Get("window"))),
			From:   strings.TrimSpace(query.Get("from")),
			To:     strings.TrimSpace(query.Get("to")),
			Page:   page,
			Limit:  limit,
		}
		if req.Window == "" {
			req.Window = reports.WindowToday
		}

		report, err := svc.Sales(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
