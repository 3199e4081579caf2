// pkg/elevate/elevate.go - self-elevation bootstrap shared by every winadmin tool.
//
// A tool calls Require once, before any privileged work. If the process
// already holds administrative rights Require returns true and the tool
// carries on. Otherwise the same executable is relaunched through the
// platform's elevation facility with Marker prepended to its arguments, the
// original process waits for it and exits with its exit code. A process that
// carries Marker and still lacks rights never tries again.

package elevate

import (
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/windowsadmins/winadmin/pkg/exitcode"
)

var (
	// ErrUnsupportedPlatform is returned on operating systems other than Windows.
	ErrUnsupportedPlatform = errors.New("elevation is only supported on Windows")
	// ErrElevationDeclined is returned when the user or the OS refused the elevated launch.
	ErrElevationDeclined = errors.New("elevation declined")
	// ErrElevationLoopPrevented is returned when an elevation retry still lacks rights.
	ErrElevationLoopPrevented = errors.New("administrator rights still missing after elevation retry")
	// ErrChildProcessSpawn is returned when the elevated process could not be started.
	ErrChildProcessSpawn = errors.New("failed to start elevated process")
)

// UnsupportedPlatformMessage is reported before exiting on other operating systems.
const UnsupportedPlatformMessage = "This tool is designed to run only on Windows."

// OutcomeKind tags the result of EnsureElevated.
type OutcomeKind int

const (
	// AlreadyElevated means the current process holds administrative rights.
	AlreadyElevated OutcomeKind = iota
	// ElevatedSuccessfully means an elevated copy ran to completion; see Outcome.ExitCode.
	ElevatedSuccessfully
	// ElevationDeclinedOrFailed means no elevated work happened.
	ElevationDeclinedOrFailed
)

// String returns the name of the outcome.
func (k OutcomeKind) String() string {
	switch k {
	case AlreadyElevated:
		return "AlreadyElevated"
	case ElevatedSuccessfully:
		return "ElevatedSuccessfully"
	case ElevationDeclinedOrFailed:
		return "ElevationDeclinedOrFailed"
	default:
		return "Unknown"
	}
}

// Outcome is the result of one bootstrap run.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int // valid for ElevatedSuccessfully only
}

// Reporter receives the bootstrap's user-facing messages. *logging.Logger satisfies it.
type Reporter interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Bootstrap holds the collaborators of the elevation protocol.
type Bootstrap struct {
	GOOS     string
	Probe    Probe
	Launcher Launcher
	Log      Reporter

	// Stdin is passed to the launcher for the elevation helper.
	Stdin StdinMode
	// Dir is the working directory requested for the elevated process.
	Dir string
	// PauseOnFailure keeps a freshly opened console readable before exiting.
	PauseOnFailure time.Duration

	Sleep func(time.Duration)
	Exit  func(int)
}

// New returns a Bootstrap for the running platform.
func New(launcher Launcher, probe Probe, log Reporter) *Bootstrap {
	dir, _ := os.Getwd()
	return &Bootstrap{
		GOOS:           runtime.GOOS,
		Probe:          probe,
		Launcher:       launcher,
		Log:            log,
		Dir:            dir,
		PauseOnFailure: 5 * time.Second,
		Sleep:          time.Sleep,
		Exit:           os.Exit,
	}
}

// EnsureElevated runs the decision logic without terminating the process.
// The error explains every ElevationDeclinedOrFailed outcome.
func (b *Bootstrap) EnsureElevated(req Request) (Outcome, error) {
	failed := Outcome{Kind: ElevationDeclinedOrFailed, ExitCode: -1}

	if b.GOOS != "windows" {
		return failed, ErrUnsupportedPlatform
	}
	if b.Probe() {
		return Outcome{Kind: AlreadyElevated}, nil
	}
	if req.ElevationAttempted() {
		return failed, ErrElevationLoopPrevented
	}

	spec := LaunchSpec{
		Path:  req.Executable(),
		Args:  req.relaunchArgs(),
		Dir:   b.Dir,
		Stdin: b.Stdin,
	}
	b.Log.Info("Administrator permissions required. Requesting elevation...")
	b.Log.Debug("Relaunching %q, stdin %s", spec.Argv(), spec.Stdin)

	code, err := b.Launcher.LaunchElevated(spec)
	if err != nil {
		if !errors.Is(err, ErrElevationDeclined) && !errors.Is(err, ErrChildProcessSpawn) && !errors.Is(err, ErrUnsupportedPlatform) {
			err = errors.Join(ErrChildProcessSpawn, err)
		}
		return failed, err
	}
	b.Log.Debug("Elevated process exited with code %d", code)
	return Outcome{Kind: ElevatedSuccessfully, ExitCode: code}, nil
}

// Require applies the caller protocol. It returns true only when the current
// process holds administrative rights. In every other case it calls Exit:
// with the elevated child's exit code, or with exitcode.Failure after
// reporting the problem. Exit is expected not to return.
func (b *Bootstrap) Require(req Request) bool {
	outcome, err := b.EnsureElevated(req)
	switch outcome.Kind {
	case AlreadyElevated:
		b.Log.Debug("Running with administrator privileges.")
		return true
	case ElevatedSuccessfully:
		b.Exit(outcome.ExitCode)
		return false
	}

	switch {
	case errors.Is(err, ErrUnsupportedPlatform):
		b.Log.Error(UnsupportedPlatformMessage)
		b.Exit(exitcode.Failure)
		return false
	case errors.Is(err, ErrElevationLoopPrevented):
		b.Log.Error("Failed to get administrator privileges. Aborting.")
	case errors.Is(err, ErrElevationDeclined):
		b.Log.Error("Elevation was declined: %v", err)
	default:
		b.Log.Error("Failed to start elevation process: %v", err)
	}
	if b.PauseOnFailure > 0 {
		b.Log.Info("Exiting in %s...", b.PauseOnFailure)
		b.Sleep(b.PauseOnFailure)
	}
	b.Exit(exitcode.Failure)
	return false
}
