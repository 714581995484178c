package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/abrezinsky/rfidkiosk/internal/app"
	"github.com/abrezinsky/rfidkiosk/internal/auth"
	"github.com/abrezinsky/rfidkiosk/internal/browser"
	"github.com/abrezinsky/rfidkiosk/internal/config"
	"github.com/abrezinsky/rfidkiosk/internal/logger"
	"github.com/abrezinsky/rfidkiosk/pkg/kiosknet"
	"github.com/abrezinsky/rfidkiosk/web"
)

var (
	version = "dev"
)

// showBanner prints the startup logo
func showBanner() {
	logo := []string{
		"  ____  _____ ___ ____    _  ___           _    ",
		" |  _ \\|  ___|_ _|  _ \\  | |/ (_) ___  ___| | __",
		" | |_) | |_   | || | | | | ' /| |/ _ \\/ __| |/ /",
		" |  _ <|  _|  | || |_| | | . \\| | (_) \\__ \\   < ",
		" |_| \\_\\_|   |___|____/  |_|\\_\\_|\\___/|___/_|\\_\\",
	}
	fmt.Println()
	for _, line := range logo {
		fmt.Printf("  %s%s%s\n", cyan, line, reset)
	}
	fmt.Printf("  %s%s%s\n\n", yellow, version, reset)
}

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup (terminal, database) happens first
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.DeviceHost, "device", cfg.DeviceHost, "Reader host or URL, e.g. 192.168.4.1 (env KIOSK_DEVICE_HOST)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite scan journal path")
	flag.StringVar(&cfg.AdminPassword, "adminpw", cfg.AdminPassword, "Admin password (auto-generated if not set)")
	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.DurationVar(&cfg.ReconnectDelay, "reconnect", cfg.ReconnectDelay, "Delay before reconnecting to the reader")
	flag.DurationVar(&cfg.ReconnectMaxDelay, "reconnect-max", cfg.ReconnectMaxDelay, "Cap for exponential reconnect backoff (0 keeps the delay fixed)")
	flag.DurationVar(&cfg.RetryDelay, "retry", cfg.RetryDelay, "Delay before retrying a failed directory fetch")
	flag.BoolVar(&cfg.RetryMalformedDirectory, "retry-malformed", cfg.RetryMalformedDirectory, "Retry an unparseable directory instead of showing it empty")
	flag.DurationVar(&cfg.ScanRetention, "retention", cfg.ScanRetention, "Drop journaled scans older than this (0 keeps everything)")
	flag.BoolVar(&cfg.OpenBrowser, "open", cfg.OpenBrowser, "Open the kiosk page in a browser at startup")
	flag.BoolVar(&cfg.KioskMode, "kiosk", cfg.KioskMode, "Open the kiosk page full-screen at startup")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `RFID Kiosk - badge access station for an RFID reader

Usage:
  rfidkiosk -device HOST [options]

Every option can also be set through KIOSK_* environment variables or a .env file.

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  rfidkiosk -device 192.168.4.1              # Reader on the default port
  rfidkiosk -device 192.168.4.1 -kiosk       # Also open the page full-screen
  KIOSK_DEVICE_HOST=reader.local rfidkiosk    # Configure from the environment

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("rfidkiosk %s\n", version)
		return 0
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%sConfiguration error: %v%s\n\n", red, err, reset)
		flag.Usage()
		return 2
	}

	showBanner()

	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	deviceURL, err := kiosknet.HTTPURL(cfg.DeviceHost)
	if err != nil {
		appLog.Error("Invalid device host", "error", err)
		return 2
	}
	source := kiosknet.NewHTTPClient(deviceURL, appLog)

	a, err := app.New(appLog, cfg, source, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		appLog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer a.Close()

	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pageURL := fmt.Sprintf("http://localhost:%d/", cfg.Port)
	adminURL := pageURL + "admin"

	switch {
	case cfg.KioskMode:
		if err := browser.OpenKiosk(pageURL); err != nil {
			appLog.Warn("Failed to open kiosk browser", "error", err)
		}
	case cfg.OpenBrowser:
		if err := browser.Open(pageURL); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !*noKeyboard && term.IsTerminal(int(os.Stdin.Fd())) {
		printKeyboardHelp(os.Stdout)
		restore := startKeyboard(&shortcuts{
			pageURL:   pageURL,
			adminURL:  adminURL,
			log:       appLog,
			kiosk:     a.Controller(),
			open:      browser.Open,
			openKiosk: browser.OpenKiosk,
			quit:      stop,
			out:       os.Stdout,
		})
		defer restore()
	} else if !*noKeyboard {
		fmt.Printf("%sStdin is not a terminal, keyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	if err := a.Run(ctx); err != nil {
		appLog.Error("Kiosk stopped", "error", err)
		return 1
	}
	appLog.Info("Kiosk stopped")
	return 0
}
