//go:build !windows
// +build !windows

package cmdline

import "os"

// ProcessArgs returns the process argument vector.
func ProcessArgs() []string {
	return os.Args
}
