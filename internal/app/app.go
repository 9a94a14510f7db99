// Package app wires the storefront services into an HTTP handler.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/auth"
	"github.com/Lixing-Zhang/vintage-drops/internal/cart"
	"github.com/Lixing-Zhang/vintage-drops/internal/checkout"
	"github.com/Lixing-Zhang/vintage-drops/internal/config"
	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/drop"
	"github.com/Lixing-Zhang/vintage-drops/internal/handlers"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/realtime"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
	"github.com/Lixing-Zhang/vintage-drops/internal/service"
	"github.com/Lixing-Zhang/vintage-drops/internal/spin"
)

const requestTimeout = 60 * time.Second

// App is the assembled server.
type App struct {
	Handler   http.Handler
	Hub       *realtime.Hub
	Evaluator *coupon.Evaluator
	Carts     *cart.Sessions
	Checkouts *checkout.Manager
}

// New builds the services on repos and the router on top of them. db is
// pinged by the health check and may be nil.
func New(ctx context.Context, cfg *config.Config, repos *repository.Repositories, db handlers.Pinger, log *slog.Logger) (*App, error) {
	fees, err := ShippingFees(cfg.Shipping)
	if err != nil {
		return nil, err
	}

	evaluator := coupon.NewEvaluator(repos.Coupons)
	if err := evaluator.Refresh(ctx); err != nil {
		return nil, errors.Wrap(err, "load coupon codes")
	}

	hub := realtime.NewHub(log, originChecker(cfg.Server.AllowedOrigins))
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(repos.Profiles, tokens, cfg.Auth.BcryptCost, cfg.Auth.AdminEmails)
	schedule := drop.NewService(repos.Drops)
	sessions := cart.NewSessions(repos.Carts)

	flows := checkout.NewManager(checkout.Deps{
		Coupons:  evaluator,
		Orders:   repos.Orders,
		Notifier: hub,
		Fees:     fees,
		Logger:   log,
	})

	productService := service.NewProductService(repos.Products, repos.Categories, repos.Drops)
	orderService := service.NewOrderService(repos.Orders)

	storage := "memory"
	if cfg.Storage.Driver != "" {
		storage = cfg.Storage.Driver
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Health:     handlers.NewHealthHandler(db, storage, log),
		Products:   handlers.NewProductHandler(productService, log),
		Categories: handlers.NewCategoryHandler(service.NewCategoryService(repos.Categories), log),
		Drops:      handlers.NewDropHandler(schedule, service.NewDropAdminService(repos.Drops), log),
		Cart:       handlers.NewCartHandler(sessions, productService, log),
		Coupons:    handlers.NewCouponHandler(evaluator, service.NewCouponAdminService(repos.Coupons, evaluator), log),
		Spin:       handlers.NewSpinHandler(spin.NewService(repos.Coupons, repos.Spins, cfg.Storefront.SpinWindow), log),
		Checkout:   handlers.NewCheckoutHandler(flows, sessions, log),
		Auth:       handlers.NewAuthHandler(authService, log),
		Orders:     handlers.NewOrderHandler(orderService, log),
		Analytics:  handlers.NewAnalyticsHandler(service.NewAnalyticsService(repos.Orders, evaluator, hub), log),
		LiveFeed:   hub,

		Tokens:          tokens,
		Profiles:        authService,
		ProfileTimeout:  cfg.Auth.ProfileLookup,
		DropStatus:      schedule,
		RequireOpenDrop: cfg.Storefront.RequireOpenDrop,
		SecureCookies:   cfg.Server.SecureCookies,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RequestTimeout:  requestTimeout,
		Logger:          log,
	})

	return &App{Handler: router, Hub: hub, Evaluator: evaluator, Carts: sessions, Checkouts: flows}, nil
}

// ShippingFees parses the configured flat fees.
func ShippingFees(cfg config.ShippingConfig) (checkout.Fees, error) {
	courier, err := decimal.NewFromString(cfg.CourierFee)
	if err != nil {
		return nil, errors.Wrap(err, "parse SHIPPING_COURIER_FEE")
	}
	pickup, err := decimal.NewFromString(cfg.PickupPointFee)
	if err != nil {
		return nil, errors.Wrap(err, "parse SHIPPING_PICKUP_FEE")
	}
	if courier.IsNegative() || pickup.IsNegative() {
		return nil, errors.New("shipping fees must not be negative")
	}
	return checkout.Fees{
		models.ShippingCourier:     courier,
		models.ShippingPickupPoint: pickup,
	}, nil
}

// originChecker restricts live feed upgrades to the CORS origins. A
// wildcard admits any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
