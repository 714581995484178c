//go:build darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// startKeyboard switches stdin to unbuffered, no-echo input and starts reading
// keys. The returned func restores the terminal.
func startKeyboard(s *shortcuts) func() {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return func() {}
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, &newState); err != nil {
		return func() {}
	}

	go readKeys(os.Stdin, s)
	return func() {
		unix.IoctlSetTermios(fd, unix.TIOCSETA, oldState)
	}
}
