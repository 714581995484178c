//go:build !linux && !darwin && !windows

package main

import "os"

func startKeyboard(s *shortcuts) func() {
	go readKeys(os.Stdin, s)
	return func() {}
}
