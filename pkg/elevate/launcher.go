// pkg/elevate/launcher.go - the capability that starts a process with elevated rights.

package elevate

import (
	"fmt"
	"strings"
)

// StdinMode selects what the elevation helper does with standard input.
type StdinMode int

const (
	// StdinInherit connects the helper to the caller's standard input.
	StdinInherit StdinMode = iota
	// StdinIgnore gives the helper an empty standard input.
	StdinIgnore
)

// String returns the configuration name of the mode.
func (m StdinMode) String() string {
	switch m {
	case StdinInherit:
		return "inherit"
	case StdinIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ParseStdinMode maps a configuration value onto a StdinMode.
func ParseStdinMode(s string) (StdinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inherit":
		return StdinInherit, nil
	case "ignore":
		return StdinIgnore, nil
	default:
		return StdinInherit, fmt.Errorf("unknown stdin mode %q", s)
	}
}

// LaunchSpec is one elevated launch: the executable, its arguments (argv[0]
// excluded) and how its streams are wired.
type LaunchSpec struct {
	Path  string
	Args  []string
	Dir   string
	Stdin StdinMode
}

// Argv returns the full argument vector the child will see.
func (s LaunchSpec) Argv() []string {
	return append([]string{s.Path}, s.Args...)
}

// Launcher starts a process elevated, blocks until it exits and returns its
// exit code. A refused elevation prompt must be reported as ErrElevationDeclined;
// any other failure to start the process as ErrChildProcessSpawn.
type Launcher interface {
	LaunchElevated(spec LaunchSpec) (int, error)
}

// LaunchMethod names a Launcher implementation in configuration.
type LaunchMethod string

const (
	// MethodShellExecute calls ShellExecuteExW with the "runas" verb.
	MethodShellExecute LaunchMethod = "shellexecute"
	// MethodPowerShell runs Start-Process -Verb RunAs through powershell.exe.
	MethodPowerShell LaunchMethod = "powershell"
)

// NewLauncher returns the Launcher for a configured method. On platforms
// without an elevation facility every method yields a launcher that reports
// ErrUnsupportedPlatform.
func NewLauncher(method LaunchMethod) (Launcher, error) {
	switch LaunchMethod(strings.ToLower(string(method))) {
	case "", MethodShellExecute:
		return newShellExecuteLauncher(), nil
	case MethodPowerShell:
		return newPowerShellLauncher(), nil
	default:
		return nil, fmt.Errorf("unknown elevation method %q", method)
	}
}
