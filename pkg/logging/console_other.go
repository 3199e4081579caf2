//go:build !windows
// +build !windows

package logging

func enableColors() bool { return true }
