//go:build windows
// +build windows

package cmdline

import (
	"strings"

	"golang.org/x/sys/windows"
)

// Join escapes args for the parameter part of a Windows command line (the
// program name excluded), so that CommandLineToArgvW in the started process
// recovers them unchanged.
func Join(args []string) string {
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = windows.EscapeArg(a)
	}
	return strings.Join(escaped, " ")
}
