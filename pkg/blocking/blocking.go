// pkg/blocking/blocking.go - detection of running applications that would interfere with a tool.

package blocking

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// processInfo is the subset of a running process the matcher needs.
type processInfo struct {
	Name string
	Exe  string
}

// listProcesses is replaced in tests.
var listProcesses = func() ([]processInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]processInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		exe, _ := p.Exe()
		out = append(out, processInfo{Name: name, Exe: exe})
	}
	return out, nil
}

// matches reports whether a running process corresponds to appName.
// An absolute path matches the executable path, a name ending in .exe the
// process name, and a bare name the process name with or without .exe.
func matches(appName string, p processInfo) bool {
	clean := strings.ToLower(appName)
	name := strings.ToLower(p.Name)

	switch {
	case strings.HasPrefix(clean, "/") || (len(clean) > 2 && clean[1] == ':' && clean[2] == '\\'):
		return p.Exe != "" && strings.EqualFold(p.Exe, appName)
	case strings.HasSuffix(clean, ".exe"):
		return name == clean
	default:
		return name == clean || name == clean+".exe"
	}
}

// IsAppRunning checks if a specific application is currently running.
func IsAppRunning(appName string) (bool, error) {
	running, err := RunningApps([]string{appName})
	return len(running) > 0, err
}

// RunningApps returns the subset of appNames that currently have a running process.
func RunningApps(appNames []string) ([]string, error) {
	procs, err := listProcesses()
	if err != nil {
		return nil, err
	}

	var running []string
	for _, app := range appNames {
		for _, p := range procs {
			if matches(app, p) {
				running = append(running, app)
				break
			}
		}
	}
	return running, nil
}
