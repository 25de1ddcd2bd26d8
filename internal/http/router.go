package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vanchuyen/driver-gateway/internal/auth"
	"github.com/vanchuyen/driver-gateway/internal/docproxy"
	"github.com/vanchuyen/driver-gateway/internal/http/handlers"
	"github.com/vanchuyen/driver-gateway/internal/middleware"
	"github.com/vanchuyen/driver-gateway/internal/observability"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(authHandler *handlers.AuthHandler, svc *auth.Service, logger *observability.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(logger))

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/driver", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/verify-otp", authHandler.HandleVerifyOTP)
		r.Post("/resend-otp", authHandler.HandleResendOTP)
		r.Post("/token/refresh", authHandler.HandleRefresh)
	})

	// Protected routes (require a live access token)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(svc))
		r.Get("/auth/me", authHandler.HandleMe)
	})

	embed := docproxy.NewHandler()
	r.Get("/docs/embed", embed.HandleEmbed)
	r.Options("/docs/embed", embed.HandleOptions)

	return r
}
