package handlers

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/rfidkiosk/internal/auth"
	"github.com/abrezinsky/rfidkiosk/internal/kiosk"
	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/services"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Controller is the slice of the kiosk controller the HTTP layer drives
type Controller interface {
	EnterAdminMode(ctx context.Context) error
	SubmitRegistration(ctx context.Context, form models.RegistrationForm) error
	RefreshDirectory(ctx context.Context) error
	Snapshot(ctx context.Context) (kiosk.State, error)
}

// DisplayHub serves display WebSocket connections
type DisplayHub interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
	ClientCount() int
}

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
	ActiveNav string
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index        *template.Template
	AdminLogin   *template.Template
	AdminHistory *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Kiosk        Controller
	Scans        services.ScanServicer
	Display      services.DisplayServicer
	Auth         *auth.Auth
	Hub          DisplayHub
	Log          HTTPLogger
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	controller Controller,
	scans services.ScanServicer,
	display services.DisplayServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub DisplayHub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Kiosk:        controller,
		Scans:        scans,
		Display:      display,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(controller Controller, scans services.ScanServicer, display services.DisplayServicer) *Handlers {
	return &Handlers{
		Kiosk:   controller,
		Scans:   scans,
		Display: display,
		Auth:    auth.New("test-password"),
		Log:     NoopHTTPLogger{},
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}
	if t.AdminHistory, err = template.New("history.html").Funcs(templateFuncs).ParseFS(templatesFS, "admin/layout.html", "admin/history.html"); err != nil {
		return nil, fmt.Errorf("admin history template: %w", err)
	}

	return t, nil
}
