package controllers

import (
	"net/http"

	"github.com/ANANDHURAI/Amart-Marketplace/api/responses"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/accounts"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/logger"
)

func AdminListCustomers(svc accounts.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := svc.ListCustomers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customers)
	}
}

// AdminBlockCustomer locks a customer out. Existing sessions die on the
// next request because blocked accounts fail the login check.
func AdminBlockCustomer(svc accounts.AdminService, logg *logger.Logger) http.HandlerFunc {
	return setBlockedHandler(svc, logg, true, "customer blocked")
}

func AdminUnblockCustomer(svc accounts.AdminService, logg *logger.Logger) http.HandlerFunc {
	return setBlockedHandler(svc, logg, false, "customer unblocked")
}

func setBlockedHandler(svc accounts.AdminService, logg *logger.Logger, blocked bool, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := pathUUID(r, "accountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetBlocked(r.Context(), accountID, blocked); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": message})
	}
}
