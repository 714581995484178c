//go:build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// startKeyboard switches stdin to unbuffered, no-echo input and starts reading
// keys. The returned func restores the terminal.
func startKeyboard(s *shortcuts) func() {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return func() {}
	}

	// Keep OPOST so \n still returns the carriage
	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return func() {}
	}

	go readKeys(os.Stdin, s)
	return func() {
		unix.IoctlSetTermios(fd, unix.TCSETS, oldState)
	}
}
