package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/abrezinsky/rfidkiosk/internal/auth"
	"github.com/abrezinsky/rfidkiosk/internal/metrics"
)

// LoginPageData holds data for the login template
type LoginPageData struct {
	Error string
	Next  string
}

// adminReturnPath returns raw when it is a local admin page (such as a
// history filtered to one badge), otherwise the history page.
func adminReturnPath(raw string) string {
	if raw == "" || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return "/admin"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/admin"
	}
	if u.Path != "/admin" && !strings.HasPrefix(u.Path, "/admin/") {
		return "/admin"
	}
	if strings.HasPrefix(u.Path, "/admin/login") || strings.HasPrefix(u.Path, "/admin/logout") {
		return "/admin"
	}
	return u.RequestURI()
}

// handleLoginPage renders the login form, or sends a logged-in operator on
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := adminReturnPath(r.URL.Query().Get("next"))
	if h.Auth.GetSessionFromRequest(r) {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	h.templates.AdminLogin.Execute(w, LoginPageData{Next: next})
}

// handleLogin checks the operator password and returns to the requested admin page
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := adminReturnPath(r.FormValue("next"))

	token, ok := h.Auth.Login(r.FormValue("password"))
	if !ok {
		metrics.AdminLogins.WithLabelValues("failure").Inc()
		slog.Warn("Admin login failed", "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		h.templates.AdminLogin.Execute(w, LoginPageData{Error: "Invalid password", Next: next})
		return
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	slog.Info("Admin logged in", "remote", r.RemoteAddr)
	auth.SetSessionCookie(w, token)
	http.Redirect(w, r, next, http.StatusFound)
}

// handleLogout ends the session. The kiosk page stays usable without one.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
		metrics.AdminLogins.WithLabelValues("logout").Inc()
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}
