//go:build !windows
// +build !windows

package elevate

// unsupportedLauncher stands in for every launch method where the operating
// system has no UAC-style elevation facility.
type unsupportedLauncher struct{}

func newShellExecuteLauncher() Launcher { return unsupportedLauncher{} }

func newPowerShellLauncher() Launcher { return unsupportedLauncher{} }

func (unsupportedLauncher) LaunchElevated(LaunchSpec) (int, error) {
	return -1, ErrUnsupportedPlatform
}
