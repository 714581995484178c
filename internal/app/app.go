package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/rfidkiosk/internal/auth"
	"github.com/abrezinsky/rfidkiosk/internal/config"
	"github.com/abrezinsky/rfidkiosk/internal/device"
	"github.com/abrezinsky/rfidkiosk/internal/handlers"
	"github.com/abrezinsky/rfidkiosk/internal/kiosk"
	"github.com/abrezinsky/rfidkiosk/internal/logger"
	"github.com/abrezinsky/rfidkiosk/internal/repository"
	"github.com/abrezinsky/rfidkiosk/internal/services"
	"github.com/abrezinsky/rfidkiosk/internal/websocket"
	"github.com/abrezinsky/rfidkiosk/pkg/kiosknet"
)

// housekeepingInterval is how often old scans and expired sessions are dropped
const housekeepingInterval = time.Hour

// App holds all application dependencies
type App struct {
	log        logger.Logger
	cfg        config.Config
	auth       *auth.Auth
	repo       *repository.Repository
	scans      *services.ScanService
	hub        *websocket.Hub
	controller *kiosk.Controller
	link       *device.Link
	handlers   *handlers.Handlers
	baseURL    string
}

// New creates and initializes a new application instance.
// source serves the reader's user directory; main passes a kiosknet.HTTPClient.
func New(log logger.Logger, cfg config.Config, source kiosknet.Client, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	wsURL, err := kiosknet.WebSocketURL(cfg.DeviceHost)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	baseURL := fmt.Sprintf("http://%s:%d/", getPreferredIP(realNetworkProvider{}), cfg.Port)

	scanService := services.NewScanService(log, repo)
	displayService := services.NewDisplayService(baseURL)

	hub := websocket.New(log)
	controller := kiosk.New(log, source, hub, scanService, kiosk.Options{
		RetryDelay:                cfg.RetryDelay,
		RetryOnMalformedDirectory: cfg.RetryMalformedDirectory,
	})
	link := device.New(wsURL, controller, log, device.Backoff{
		Initial: cfg.ReconnectDelay,
		Max:     cfg.ReconnectMaxDelay,
	})
	controller.SetSender(link)
	hub.SetProvider(controller)

	h, err := handlers.New(
		controller,
		scanService,
		displayService,
		templatesFS,
		handlers.NewStaticServer(staticFS),
		adminAuth,
		hub,
		log,
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:        log,
		cfg:        cfg,
		auth:       adminAuth,
		repo:       repo,
		scans:      scanService,
		hub:        hub,
		controller: controller,
		link:       link,
		handlers:   h,
		baseURL:    baseURL,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Controller exposes the kiosk controller for keyboard shortcuts
func (a *App) Controller() *kiosk.Controller {
	return a.controller
}

// BaseURL is the LAN address displays should open
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close releases the database. Call after Run returns.
func (a *App) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run listens on the configured port and serves until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the display hub, the controller, the reader link and the HTTP
// server on ln. The first component to fail stops the rest.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.hub.Run(gctx) })
	g.Go(func() error { return a.controller.Run(gctx) })
	g.Go(func() error { return a.link.Run(gctx) })
	g.Go(func() error {
		a.housekeeping(gctx)
		return nil
	})

	g.Go(func() error {
		a.log.Info("Server starting", "url", a.baseURL, "reader", a.link.URL())
		a.log.Info("Admin URL", "url", strings.TrimSuffix(a.baseURL, "/")+"/admin")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// housekeeping prunes the scan journal and expired admin sessions
func (a *App) housekeeping(ctx context.Context) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	a.prune(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.prune(ctx)
		}
	}
}

func (a *App) prune(ctx context.Context) {
	if a.auth != nil {
		a.auth.PruneExpired()
	}
	if a.cfg.ScanRetention <= 0 {
		return
	}
	removed, err := a.scans.Prune(ctx, a.cfg.ScanRetention)
	if err != nil {
		if ctx.Err() == nil {
			a.log.Warn("Failed to prune scan journal", "error", err)
		}
		return
	}
	if removed > 0 {
		a.log.Info("Pruned scan journal", "removed", removed, "retention", a.cfg.ScanRetention)
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for LAN access, preferring
// private ranges. Falls back to localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
