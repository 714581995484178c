// Package browser launches the kiosk page on the local display.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
	LookPath(name string) (string, error)
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// LookPath finds an executable in PATH
func (RealCommander) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

var defaultCommander Commander = RealCommander{}

// Chromium builds tried for fullscreen kiosk mode on Linux, in order
var linuxKioskBrowsers = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// Open opens the URL in the default browser
func Open(url string) error {
	return OpenWithCommander(url, defaultCommander, runtime.GOOS)
}

// OpenKiosk opens the URL fullscreen without browser chrome
func OpenKiosk(url string) error {
	return OpenKioskWithCommander(url, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens the URL using the specified commander and OS (for testing)
func OpenWithCommander(url string, commander Commander, goos string) error {
	switch goos {
	case "linux":
		return commander.Start("xdg-open", url)
	case "darwin":
		return commander.Start("open", url)
	case "windows":
		return commander.Start("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenKioskWithCommander opens the URL in kiosk mode using the specified commander and OS
func OpenKioskWithCommander(url string, commander Commander, goos string) error {
	switch goos {
	case "linux":
		for _, name := range linuxKioskBrowsers {
			if path, err := commander.LookPath(name); err == nil {
				return commander.Start(path, "--kiosk", "--noerrdialogs", "--disable-infobars", url)
			}
		}
		return fmt.Errorf("no chromium browser found for kiosk mode (tried %v)", linuxKioskBrowsers)
	case "darwin":
		return commander.Start("open", "-a", "Google Chrome", "--args", "--kiosk", url)
	case "windows":
		return commander.Start("cmd", "/c", "start", "msedge", "--kiosk", url, "--edge-kiosk-type=fullscreen")
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}
}
