package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/vintage-drops/internal/middleware"
	"github.com/Lixing-Zhang/vintage-drops/internal/realtime"
)

// RouterDeps is everything the HTTP surface is built from.
type RouterDeps struct {
	Health     *HealthHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Drops      *DropHandler
	Cart       *CartHandler
	Coupons    *CouponHandler
	Spin       *SpinHandler
	Checkout   *CheckoutHandler
	Auth       *AuthHandler
	Orders     *OrderHandler
	Analytics  *AnalyticsHandler
	LiveFeed   http.Handler

	Tokens          middleware.TokenParser
	Profiles        middleware.ProfileLookup
	ProfileTimeout  time.Duration
	DropStatus      middleware.DropStatus
	RequireOpenDrop bool
	SecureCookies   bool
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	Logger          *slog.Logger
}

// NewRouter builds the HTTP router for the storefront and the back-office
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.SessionHeader},
		ExposedHeaders:   []string{"Link", "Retry-After", middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", d.Health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(timeout(d.RequestTimeout))
			storefront(r, d)
			account(r, d)
		})

		r.Route("/admin", func(r chi.Router) {
			requireAdmin := middleware.RequireAdmin(d.Profiles, d.ProfileTimeout, d.Logger)

			// The live feed is long-lived and stays outside the request timeout.
			r.With(middleware.WebSocketToken(d.Tokens, realtime.AuthProtocol), requireAdmin).
				Get("/live", d.LiveFeed.ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Use(timeout(d.RequestTimeout))
				admin(r, d)
			})
		})
	})

	return r
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimiddleware.Timeout(d)
}

func storefront(r chi.Router, d RouterDeps) {
	r.Get("/products", d.Products.ListProducts)
	r.Get("/products/{productId}", d.Products.GetProduct)
	r.Get("/categories", d.Categories.Tree)
	r.Get("/drops/current", d.Drops.Current)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(d.SecureCookies))

		// Reading the cart and the wheel is allowed between drops.
		r.Get("/cart", d.Cart.GetCart)
		r.Get("/spin", d.Spin.Wheel)
		r.Get("/checkout", d.Checkout.GetCheckout)

		r.Group(func(r chi.Router) {
			if d.RequireOpenDrop {
				r.Use(middleware.RequireOpenDrop(d.DropStatus, d.Logger))
			}

			r.Post("/cart/items", d.Cart.AddItem)
			r.Post("/cart/items/{itemId}/increase", d.Cart.IncreaseItem)
			r.Post("/cart/items/{itemId}/decrease", d.Cart.DecreaseItem)
			r.Delete("/cart/items/{itemId}", d.Cart.RemoveItem)
			r.Delete("/cart", d.Cart.ClearCart)

			r.Post("/coupons/apply", d.Coupons.ApplyCoupon)
			r.Post("/spin", d.Spin.Spin)

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/shipping", d.Checkout.SubmitShipping)
				r.Post("/back", d.Checkout.Back)
				r.Post("/retry", d.Checkout.Retry)
				r.Post("/coupon", d.Checkout.ApplyCoupon)
				r.Delete("/coupon", d.Checkout.RemoveCoupon)
				r.Post("/submit", d.Checkout.Submit)
			})
		})
	})
}

func account(r chi.Router, d RouterDeps) {
	r.Post("/auth/register", d.Auth.Register)
	r.Post("/auth/login", d.Auth.Login)

	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", d.Auth.Me)
		r.Get("/orders", d.Orders.MyOrders)
		r.Get("/coupons", d.Spin.MyCoupons)
	})
}

func admin(r chi.Router, d RouterDeps) {
	r.Get("/analytics", d.Analytics.Summary)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", d.Products.ListAll)
		r.Post("/", d.Products.CreateProduct)
		r.Get("/export", d.Products.ExportProducts)
		r.Post("/import", d.Products.ImportProducts)
		r.Put("/{productId}", d.Products.UpdateProduct)
		r.Delete("/{productId}", d.Products.DeleteProduct)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", d.Categories.List)
		r.Post("/", d.Categories.Create)
		r.Put("/{categoryId}", d.Categories.Update)
		r.Delete("/{categoryId}", d.Categories.Delete)
	})

	r.Route("/drops", func(r chi.Router) {
		r.Get("/", d.Drops.List)
		r.Post("/", d.Drops.Create)
		r.Put("/{dropId}", d.Drops.Update)
		r.Delete("/{dropId}", d.Drops.Delete)
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", d.Coupons.List)
		r.Post("/", d.Coupons.Create)
		r.Get("/stats", d.Coupons.GetStats)
		r.Put("/{couponId}", d.Coupons.Update)
		r.Delete("/{couponId}", d.Coupons.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", d.Orders.ListOrders)
		r.Get("/export", d.Orders.ExportOrders)
		r.Get("/{orderId}", d.Orders.GetOrder)
		r.Patch("/{orderId}/status", d.Orders.UpdateStatus)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", d.Auth.ListUsers)
		r.Put("/{userId}/admin", d.Auth.SetAdmin)
	})
}
