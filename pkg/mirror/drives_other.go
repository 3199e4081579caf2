//go:build !windows
// +build !windows

package mirror

func volumeDetails(string) (label, driveType string) { return "", "" }
