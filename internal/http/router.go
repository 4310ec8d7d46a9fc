package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/tradehub/internal/auth"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Listings *ListingHandler
	Orders   *OrdersHandler
	Auth     *AuthHandler
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter mounts every storefront route under /api/v1 and wraps the
// router for tracing.
func NewRouter(h Handlers, session *auth.Session, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(BodyLimit(cfg.MaxRequestBodySize))

	r.Get("/health", health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		r.Get("/products", h.Catalog.ListProducts)
		r.Get("/products/{id}", h.Catalog.GetProduct)
		r.Get("/search", h.Catalog.Search)
		r.Get("/categories", h.Catalog.ListCategories)
		r.Get("/categories/{id}/products", h.Catalog.CategoryProducts)
		r.Get("/sellers", h.Catalog.ListSellers)
		r.Get("/sellers/{id}", h.Catalog.GetSeller)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			r.Post("/checkout", h.Cart.Checkout)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.Wishlist.GetWishlist)
			r.Delete("/", h.Wishlist.ClearWishlist)
			r.Post("/items", h.Wishlist.AddItem)
			r.Delete("/items/{product_id}", h.Wishlist.RemoveItem)
			r.Post("/items/{product_id}/toggle", h.Wishlist.Toggle)
			r.Post("/items/{product_id}/move-to-cart", h.Wishlist.MoveToCart)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/signup", h.Auth.Signup)
			r.Post("/logout", h.Auth.Logout)
			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(session))
				r.Get("/me", h.Auth.Me)
				r.Patch("/me", h.Auth.UpdateProfile)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(session))

			r.Route("/listings/drafts", func(r chi.Router) {
				r.Post("/", h.Listings.CreateDraft)
				r.Get("/{id}", h.Listings.GetDraft)
				r.Patch("/{id}", h.Listings.UpdateDraft)
				r.Post("/{id}/next", h.Listings.NextStep)
				r.Post("/{id}/back", h.Listings.PreviousStep)
				r.Post("/{id}/publish", h.Listings.PublishDraft)
			})

			r.Route("/my-listings", func(r chi.Router) {
				r.Get("/", h.Listings.MyListings)
				r.Get("/stats", h.Listings.Stats)
				r.Post("/bulk", h.Listings.Bulk)
				r.Patch("/{id}", h.Listings.UpdateListing)
				r.Delete("/{id}", h.Listings.DeleteListing)
				r.Post("/{id}/sold", h.Listings.MarkAsSold)
				r.Post("/{id}/promote", h.Listings.Promote)
				r.Post("/{id}/duplicate", h.Listings.Duplicate)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Orders.ListOrders)
				r.Get("/stats", h.Orders.Stats)
				r.Get("/{id}", h.Orders.GetOrder)
				r.Patch("/{id}", h.Orders.UpdateStatus)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

func health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
