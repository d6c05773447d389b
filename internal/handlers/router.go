package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rolecast"
	"rolecast/internal/config"
	localMiddleware "rolecast/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	// Chi's built-in middleware (conditionally applied)
	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Our custom middleware
	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.SecurityHeaders())

	// Rate limiting (conditionally applied)
	if !opts.DisableRateLimiting {
		rateLimiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
	}

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	// Static assets are compiled into the binary
	r.Handle("/static/*", http.FileServer(http.FS(rolecast.StaticFS)))

	// Main pages
	r.Get("/", h.Home)
	r.Post("/session/new", h.CreateSession)
	r.Get("/session/lookup", h.LookupSession)
	r.Get("/session/{code}", h.SetupPage)
	r.Get("/session/{code}/reveal", h.RevealPage)
	r.Get("/session/{code}/summary", h.SummaryPage)

	// Setup actions
	r.Post("/session/{code}/validate", h.ValidateSetup)
	r.Post("/session/{code}/allocate", h.Allocate)

	// Reveal walk
	r.Post("/session/{code}/reveal/show", h.RevealShow)
	r.Post("/session/{code}/reveal/next", h.RevealNext)

	// Summary actions
	r.Post("/session/{code}/reallocate", h.Reallocate)
	r.Post("/session/{code}/reset", h.ResetSession)

	// SSE route with validation middleware
	r.Get("/sse/session/{code}", ValidateSSERequest(h.StreamSession))

	// Health check endpoints (no auth required)
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
