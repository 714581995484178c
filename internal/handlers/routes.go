package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/rfidkiosk/internal/metrics"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// WebSocket is long-lived and must stay outside the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RedirectSlashes)
		r.Use(middleware.Timeout(30 * time.Second))

		// Static files (served from embedded filesystem)
		if h.staticServer != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
		}

		// Kiosk display
		r.Get("/", h.handleIndex)
		r.Get("/qr.png", h.handleDisplayQR)
		r.Get("/api/state", h.handleState)
		r.Post("/api/admin-mode", h.handleAdminMode)
		r.Post("/api/register", h.handleRegister)

		// Auth routes (public)
		r.Get("/admin/login", h.handleLoginPage)
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)

		// Admin pages (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Get("/admin", h.handleAdminHistory)
		})

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)
			r.Get("/api/admin/scans", h.handleGetScans)
			r.Get("/api/admin/stats", h.handleGetStats)
			r.Post("/api/admin/scans/prune", h.handlePruneScans)
			r.Post("/api/admin/directory/refresh", h.handleRefreshDirectory)
		})
	})

	return r
}
