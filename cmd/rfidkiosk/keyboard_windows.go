//go:build windows

package main

import "os"

// startKeyboard reads keys line-buffered; console mode switching is not attempted
func startKeyboard(s *shortcuts) func() {
	go readKeys(os.Stdin, s)
	return func() {}
}
