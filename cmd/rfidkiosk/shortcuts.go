package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

// kioskActions is what the console can ask of the running controller
type kioskActions interface {
	EnterAdminMode(ctx context.Context) error
	RefreshDirectory(ctx context.Context) error
}

// shortcuts maps single keystrokes to operator actions
type shortcuts struct {
	pageURL   string
	adminURL  string
	log       *logger.SlogLogger
	kiosk     kioskActions
	open      func(url string) error
	openKiosk func(url string) error
	quit      func()
	out       io.Writer
}

// handle runs the action bound to key. It returns false once quit was requested.
func (s *shortcuts) handle(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		s.printf(cyan, "Opening kiosk page in browser...")
		if err := s.open(s.pageURL); err != nil {
			s.printf(red, "Error opening browser: %v", err)
		}
	case "k":
		s.printf(cyan, "Opening kiosk page in full-screen kiosk mode...")
		if err := s.openKiosk(s.pageURL); err != nil {
			s.printf(red, "Error opening browser: %v", err)
		}
	case "a":
		s.printf(cyan, "Opening admin page in browser...")
		if err := s.open(s.adminURL); err != nil {
			s.printf(red, "Error opening browser: %v", err)
		}
	case "m":
		if err := s.act(s.kiosk.EnterAdminMode); err != nil {
			s.printf(red, "Admin mode failed: %v", err)
		} else {
			s.printf(green, "Admin mode armed, scan an admin card")
		}
	case "r":
		if err := s.act(s.kiosk.RefreshDirectory); err != nil {
			s.printf(red, "Directory reload failed: %v", err)
		} else {
			s.printf(green, "Directory reload requested")
		}
	case "h":
		if s.log.IsHTTPLoggingEnabled() {
			s.log.DisableHTTPLogging()
			s.printf(yellow, "HTTP logging disabled")
		} else {
			s.log.EnableHTTPLogging()
			s.printf(green, "HTTP logging enabled")
		}
	case "l":
		s.cycleLogLevel()
	case "?":
		printKeyboardHelp(s.out)
	case "q", "\x03":
		s.printf(yellow, "Shutting down...")
		s.quit()
		return false
	}
	return true
}

func (s *shortcuts) act(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return fn(ctx)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func (s *shortcuts) cycleLogLevel() {
	next := logger.NextLevel(s.log.GetLevel())
	s.log.SetLevel(next)
	fmt.Fprintf(s.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
}

func (s *shortcuts) printf(color, format string, args ...any) {
	fmt.Fprintf(s.out, color+format+reset+"\n", args...)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(w io.Writer) {
	fmt.Fprintf(w, "\n%s%s  Keyboard shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(w, "    %so%s      - Open kiosk page in browser\n", cyan, reset)
	fmt.Fprintf(w, "    %sk%s      - Open kiosk page full-screen\n", cyan, reset)
	fmt.Fprintf(w, "    %sa%s      - Open admin page in browser\n", cyan, reset)
	fmt.Fprintf(w, "    %sm%s      - Arm admin mode\n", cyan, reset)
	fmt.Fprintf(w, "    %sr%s      - Reload user directory from the reader\n", cyan, reset)
	fmt.Fprintf(w, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(w, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(w, "    %sq%s      - Quit\n", cyan, reset)
	fmt.Fprintf(w, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// readKeys feeds bytes from r to s until quit or a read error
func readKeys(r io.Reader, s *shortcuts) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if !s.handle(buf[0]) {
			return
		}
	}
}
