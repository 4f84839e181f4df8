package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Store          store.Store
	Client         *backend.Client
	Reconciler     *checkout.Reconciler
	RequestTimeout time.Duration
}

// NewRouter assembles the storefront's HTTP surface.
func NewRouter(cfg RouterConfig) chi.Router {
	authHandler := NewAuthHandler(cfg.Store, cfg.Client, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Store, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.Store, cfg.Client, cfg.Reconciler, cfg.RequestTimeout)
	leadsHandler := NewLeadsHandler(cfg.Store, cfg.Client, cfg.RequestTimeout)
	purchasesHandler := NewPurchasesHandler(cfg.Store, cfg.Client, cfg.RequestTimeout)
	zonesHandler := NewZonesHandler(cfg.Store, cfg.Client, cfg.RequestTimeout)
	chatHandler := NewChatHandler(cfg.Client, cfg.RequestTimeout)
	contactHandler := NewContactHandler(cfg.Client, cfg.RequestTimeout)
	themeHandler := NewThemeHandler(cfg.Store, cfg.RequestTimeout)
	adminHandler := NewAdminHandler(cfg.Store, cfg.Client, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)
	r.Use(AuthContextMiddleware(cfg.Store))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Payment provider return legs (the provider redirects here).
	r.Get("/checkout/success", checkoutHandler.Success)
	r.Get("/checkout/cancel", checkoutHandler.Cancel)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/register", authHandler.Register)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/verify-reset-code", authHandler.VerifyResetCode)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.With(RequireUser).Post("/change-password", authHandler.ChangePassword)
		})

		r.Get("/leads", leadsHandler.List)
		r.With(RequireAdmin).Post("/leads/scrape", leadsHandler.Scrape)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{lead_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Create)

		r.Route("/purchases", func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/", purchasesHandler.List)
			r.Get("/incidents", purchasesHandler.Incidents)
		})

		r.Route("/zones", func(r chi.Router) {
			r.With(RequireUser).Get("/", zonesHandler.List)
			r.With(RequireUser).Post("/", zonesHandler.Create)
			r.With(RequireUser).Delete("/{id}", zonesHandler.Delete)
			r.With(RequireAdmin).Post("/test-email", zonesHandler.TestEmail)
		})

		r.Post("/chat", chatHandler.Ask)
		r.Post("/contact", contactHandler.Send)

		r.Get("/theme", themeHandler.Get)
		r.Put("/theme", themeHandler.Put)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users/update", adminHandler.UpdateUser)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
		})
	})

	return r
}
