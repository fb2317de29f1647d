package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ANANDHURAI/Amart-Marketplace/api/routes"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/accounts"
	cartsvc "github.com/ANANDHURAI/Amart-Marketplace/internal/cart"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/catalog"
	checkoutsvc "github.com/ANANDHURAI/Amart-Marketplace/internal/checkout"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/coupons"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/discounts"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/favourites"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/offers"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/orders"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/reports"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/wallet"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/auth/session"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/gateway"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/logger"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/mailer"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/metrics"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/migrate"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	defer func() {
		if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	mailerClient, err := mailer.New(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	accountsRepo := accounts.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	favouritesRepo := favourites.NewRepository(dbClient.DB())
	couponsRepo := coupons.NewRepository(dbClient.DB())
	offersRepo := offers.NewRepository(dbClient.DB())
	walletRepo := wallet.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		Repo:           accountsRepo,
		Staging:        redisClient,
		Mailer:         mailerClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		OTPConfig:      cfg.OTP,
		Now:            time.Now,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	addressService, err := accounts.NewAddressService(accountsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	adminService, err := accounts.NewAdminService(accountsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{Repo: catalogRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	favouritesService, err := favourites.NewService(favourites.ServiceParams{
		Repo:     favouritesRepo,
		Products: catalogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create favourites service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Repo:       cartRepo,
		Catalog:    catalogRepo,
		Favourites: favouritesRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponsService, err := coupons.NewService(coupons.ServiceParams{Repo: couponsRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}

	offersService, err := offers.NewService(offers.ServiceParams{
		Repo:       offersRepo,
		Categories: catalogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(wallet.ServiceParams{
		Repo: walletRepo,
		Tx:   dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    ordersRepo,
		Tx:      dbClient,
		Stock:   catalog.NewStock(catalogRepo),
		Wallet:  walletService,
		Metrics: checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	quoter, err := discounts.NewQuoter(offersRepo, couponsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create discount quoter", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Cart:      cartRepo,
		Stock:     catalog.NewStock(catalogRepo),
		Coupons:   couponsRepo,
		Orders:    ordersRepo,
		Addresses: accountsRepo,
		Wallet:    walletService,
		Quoter:    quoter,
		Gateway:   gatewayClient,
		Store:     redisClient,
		Tx:        dbClient,
		Config:    cfg.Checkout,
		Metrics:   checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reports.ServiceParams{
		Orders: ordersRepo,
		Now:    time.Now,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Sessions:   sessionManager,
			Registry:   registry,
			Accounts:   accountsService,
			Addresses:  addressService,
			Admin:      adminService,
			Catalog:    catalogService,
			Cart:       cartService,
			Favourites: favouritesService,
			Wallet:     walletService,
			Checkout:   checkoutService,
			Orders:     ordersService,
			Coupons:    couponsService,
			Offers:     offersService,
			Reports:    reportsService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}
