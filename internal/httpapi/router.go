package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/auth"
)

// RouterConfig bundles the handlers and the cross-cutting knobs the router
// wires together.
type RouterConfig struct {
	Auth           *AuthHandler
	Cart           *CartHandler
	Products       *ProductHandler
	Checkout       *CheckoutHandler
	Orders         *OrdersHandler
	Authenticator  auth.Authenticator
	RequestTimeout time.Duration
}

// NewRouter builds the storefront's HTTP surface. Catalog browsing and auth
// are public; cart, checkout, orders and profile all sit behind the auth
// middleware. Unknown paths redirect to the storefront root.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"service": "storefront"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := AuthMiddleware(cfg.Authenticator)
	timeout := middleware.Timeout(cfg.RequestTimeout)

	r.Route("/api/v1", func(r chi.Router) {
		// The SSE stream lives until the client disconnects and is the one
		// route exempt from the request timeout.
		r.Get("/products/stream", cfg.Products.Stream)

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", cfg.Auth.Signup)
				r.Post("/login", cfg.Auth.Login)
				r.Post("/logout", cfg.Auth.Logout)
				r.Get("/session", cfg.Auth.Session)
				r.Post("/reset-password", cfg.Auth.ResetPassword)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.Products.List)
				r.Get("/{id}", cfg.Products.Get)
				r.With(requireAuth).Post("/", cfg.Products.Create)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Put("/profile", cfg.Auth.UpdateProfile)

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", cfg.Cart.GetCart)
					r.Post("/items", cfg.Cart.AddItem)
					r.Put("/items/{item_id}", cfg.Cart.UpdateQuantity)
					r.Delete("/items/{item_id}", cfg.Cart.RemoveItem)
					r.Delete("/", cfg.Cart.ClearCart)
				})

				r.Route("/checkout", func(r chi.Router) {
					r.Post("/", cfg.Checkout.Begin)
					r.Get("/", cfg.Checkout.Current)
					r.Post("/next", cfg.Checkout.Next)
					r.Post("/back", cfg.Checkout.Back)
					r.Put("/address", cfg.Checkout.SaveAddress)
					r.Get("/address", cfg.Checkout.GetAddress)
					r.Get("/total", cfg.Checkout.Total)
					r.Post("/payment", cfg.Checkout.SubmitPayment)
				})

				r.Get("/orders", cfg.Orders.List)
			})
		})
	})

	// Unknown paths go back to the storefront root.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	return otelhttp.NewHandler(r, "storefront")
}
