package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ANANDHURAI/Amart-Marketplace/api/controllers"
	"github.com/ANANDHURAI/Amart-Marketplace/api/middleware"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/accounts"
	cartsvc "github.com/ANANDHURAI/Amart-Marketplace/internal/cart"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/catalog"
	checkoutsvc "github.com/ANANDHURAI/Amart-Marketplace/internal/checkout"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/coupons"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/favourites"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/offers"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/orders"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/reports"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/wallet"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/auth/session"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/logger"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions sessionManager
	Registry *prometheus.Registry

	Accounts   accounts.Service
	Addresses  accounts.AddressService
	Admin      accounts.AdminService
	Catalog    catalog.Service
	Cart       cartsvc.Service
	Favourites favourites.Service
	Wallet     wallet.Service
	Checkout   checkoutsvc.Service
	Orders     orders.Service
	Coupons    coupons.Service
	Offers     offers.Service
	Reports    reports.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, d.Redis, logg)).Post("/signup", controllers.AuthSignup(d.Accounts, logg))
		r.Post("/signup/verify", controllers.AuthActivate(d.Accounts, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, d.Redis, logg)).Post("/signup/resend", controllers.AuthResendOTP(d.Accounts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Accounts, logg))
		r.Post("/logout", controllers.AuthLogout(d.Accounts, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AdminAuthLogin(d.Accounts, logg))
	})

	// Storefront catalog stays public, browsing needs no session.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(d.Catalog, logg))
		r.Get("/products/{slug}", controllers.GetProduct(d.Catalog, logg))
		r.Get("/categories", controllers.ListActiveCategories(d.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.ListAddresses(d.Addresses, logg))
			r.Post("/", controllers.CreateAddress(d.Addresses, logg))
			r.Get("/{addressID}", controllers.GetAddress(d.Addresses, logg))
			r.Put("/{addressID}", controllers.UpdateAddress(d.Addresses, logg))
			r.Delete("/{addressID}", controllers.DeleteAddress(d.Addresses, logg))
			r.Post("/{addressID}/default", controllers.SetDefaultAddress(d.Addresses, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(d.Cart, logg))
			r.Delete("/", controllers.ClearCart(d.Cart, logg))
			r.Post("/items", controllers.AddCartItem(d.Cart, logg))
			r.Put("/items/{itemID}", controllers.UpdateCartItem(d.Cart, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(d.Cart, logg))
		})

		r.Route("/favourites", func(r chi.Router) {
			r.Get("/", controllers.ListFavourites(d.Favourites, logg))
			r.Post("/{productID}", controllers.AddFavourite(d.Favourites, logg))
			r.Delete("/{productID}", controllers.RemoveFavourite(d.Favourites, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.GetWallet(d.Wallet, logg))
			r.Post("/topup", controllers.BeginWalletTopUp(d.Checkout, logg))
			r.Post("/topup/callback", controllers.WalletTopUpCallback(d.Checkout, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.BeginCheckout(d.Checkout, logg))
			r.Get("/", controllers.CurrentCheckout(d.Checkout, logg))
			r.Post("/dispatch", controllers.DispatchCheckout(d.Checkout, logg))
			r.Post("/callback", controllers.CheckoutCallback(d.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(d.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(d.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(d.Orders, logg))
			r.Post("/{orderID}/items/{itemID}/cancel", controllers.CancelOrderItem(d.Orders, logg))
			r.Post("/{orderID}/return", controllers.ReturnOrder(d.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminListCategories(d.Catalog, logg))
			r.Post("/", controllers.AdminCreateCategory(d.Catalog, logg))
			r.Put("/{categoryID}", controllers.AdminUpdateCategory(d.Catalog, logg))
			r.Delete("/{categoryID}", controllers.AdminDeleteCategory(d.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(d.Catalog, logg))
			r.Put("/{productID}", controllers.AdminUpdateProduct(d.Catalog, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(d.Catalog, logg))
			r.Post("/{productID}/inventory", controllers.AdminAddInventory(d.Catalog, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Put("/{inventoryID}", controllers.AdminUpdateInventory(d.Catalog, logg))
			r.Post("/{inventoryID}/active", controllers.AdminSetInventoryActive(d.Catalog, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminListCoupons(d.Coupons, logg))
			r.Post("/", controllers.AdminCreateCoupon(d.Coupons, logg))
			r.Put("/{couponID}", controllers.AdminUpdateCoupon(d.Coupons, logg))
			r.Delete("/{couponID}", controllers.AdminDeactivateCoupon(d.Coupons, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.AdminListOffers(d.Offers, logg))
			r.Post("/", controllers.AdminCreateOffer(d.Offers, logg))
			r.Put("/{offerID}", controllers.AdminUpdateOffer(d.Offers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(d.Orders, logg))
			r.Get("/{orderID}", controllers.AdminGetOrder(d.Orders, logg))
			r.Put("/{orderID}/items/{itemID}/status", controllers.AdminAdvanceOrderItem(d.Orders, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.AdminListCustomers(d.Admin, logg))
			r.Post("/{accountID}/block", controllers.AdminBlockCustomer(d.Admin, logg))
			r.Post("/{accountID}/unblock", controllers.AdminUnblockCustomer(d.Admin, logg))
		})

		r.Get("/reports/sales", controllers.AdminSalesReport(d.Reports, logg))
	})

	return r
}
