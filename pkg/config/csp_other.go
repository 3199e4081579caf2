//go:build !windows
// +build !windows

package config

// loadCSPOverrides is a no-op where there is no registry.
func loadCSPOverrides(string, *Configuration) error { return nil }
