// pkg/tool/tool.go - startup and shutdown shared by the winadmin commands.
//
// Every command parses its flags from the elevation Request (so the marker
// never reaches pflag), loads the configuration, runs the elevation
// bootstrap and only then opens its session log and starts working.

package tool

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/windowsadmins/winadmin/pkg/cmdline"
	"github.com/windowsadmins/winadmin/pkg/config"
	"github.com/windowsadmins/winadmin/pkg/elevate"
	"github.com/windowsadmins/winadmin/pkg/exitcode"
	"github.com/windowsadmins/winadmin/pkg/logging"
	"github.com/windowsadmins/winadmin/pkg/prompt"
	"github.com/windowsadmins/winadmin/pkg/version"
)

// Common holds the flags every command accepts.
type Common struct {
	ConfigPath string
	Verbosity  int
	Version    bool
	ShowConfig bool
	Yes        bool
	NoPause    bool
}

// Register adds the common flags to fs.
func (c *Common) Register(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", config.ConfigPath, "Path to the configuration file.")
	fs.CountVarP(&c.Verbosity, "verbose", "v", "Increase verbosity (-v shows debug output).")
	fs.BoolVar(&c.Version, "version", false, "Print the version and exit.")
	fs.BoolVar(&c.ShowConfig, "show-config", false, "Display the current configuration and exit.")
	fs.BoolVarP(&c.Yes, "yes", "y", false, "Answer yes to confirmation prompts.")
	fs.BoolVar(&c.NoPause, "no-pause", false, "Do not pause before exiting.")
}

// App is one running command.
type App struct {
	Name  string
	Stdin elevate.StdinMode
	Flags *pflag.FlagSet

	Common  Common
	Request elevate.Request
	Config  *config.Configuration
	Log     *logging.Logger
	Session *logging.Session
	Prompt  *prompt.Prompter

	// GOOS is checked before anything else touches the machine.
	GOOS   string
	Stdout io.Writer
	Stderr io.Writer
	Exit   func(int)

	// Interactive reports whether a person can read the console before it closes.
	Interactive func() bool
}

// New returns an App with the common flags registered. Commands add their
// own flags to App.Flags before calling Start.
func New(name string, stdin elevate.StdinMode) *App {
	a := &App{
		Name:        name,
		Stdin:       stdin,
		Flags:       pflag.NewFlagSet(name, pflag.ContinueOnError),
		Prompt:      prompt.Console(),
		GOOS:        runtime.GOOS,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Exit:        os.Exit,
		Interactive: prompt.Interactive,
	}
	a.Common.Register(a.Flags)
	return a
}

// Parse builds the Request from argv and parses the forwarded arguments.
func (a *App) Parse(argv []string) error {
	a.Request = elevate.NewRequest(argv)
	return a.Flags.Parse(a.Request.Args())
}

// Start runs everything up to the first privileged step. It returns only in
// a process that holds administrative rights; every other path ends in Exit.
func (a *App) Start() {
	a.start(cmdline.ProcessArgs())
}

func (a *App) start(argv []string) {
	if err := a.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			a.Exit(exitcode.Success)
			return
		}
		fmt.Fprintf(a.Stderr, "%s: %v\n", a.Name, err)
		a.Exit(exitcode.Usage)
		return
	}
	if a.Common.Version {
		version.Print(a.Stdout, a.Name, a.Common.Verbosity > 0)
		a.Exit(exitcode.Success)
		return
	}

	a.Log = logging.New(a.Common.Verbosity > 0)
	// The configuration may name Windows-only settings; reject the platform first.
	if a.GOOS != "windows" {
		a.Log.Error(elevate.UnsupportedPlatformMessage)
		a.Exit(exitcode.Failure)
		return
	}

	cfg, err := config.LoadConfig(a.Common.ConfigPath)
	if err != nil {
		a.Log.Error("Failed to load configuration: %v", err)
		a.Exit(exitcode.Usage)
		return
	}
	a.Config = cfg
	if a.Common.Verbosity == 0 {
		a.Log.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	}

	if a.Common.ShowConfig {
		out, err := cfg.YAML()
		if err != nil {
			a.Log.Error("Failed to render configuration: %v", err)
			a.Exit(exitcode.Failure)
			return
		}
		a.Log.Printf("Current configuration:\n%s", out)
		a.Exit(exitcode.Success)
		return
	}

	boot, err := NewBootstrap(cfg, a.Stdin, a.Log)
	if err != nil {
		a.Log.Error("Invalid elevation settings: %v", err)
		a.Exit(exitcode.Usage)
		return
	}
	if a.Common.NoPause {
		boot.PauseOnFailure = 0
	}
	boot.Exit = a.Exit
	if !boot.Require(a.Request) {
		return
	}

	a.openSession()
}

// NewBootstrap builds the elevation bootstrap described by cfg.
func NewBootstrap(cfg *config.Configuration, stdin elevate.StdinMode, log elevate.Reporter) (*elevate.Bootstrap, error) {
	launcher, err := elevate.NewLauncher(elevate.LaunchMethod(cfg.Elevation.Method))
	if err != nil {
		return nil, err
	}
	probe, err := elevate.NewProbe(elevate.ProbeMethod(cfg.Elevation.Probe))
	if err != nil {
		return nil, err
	}
	b := elevate.New(launcher, probe, log)
	b.Stdin = stdin
	b.PauseOnFailure = time.Duration(cfg.Elevation.PauseSeconds) * time.Second
	return b, nil
}

func (a *App) openSession() {
	if a.Config.Logging.Disabled {
		return
	}
	s, err := logging.OpenSession(logging.SessionConfig{
		BaseDir:       a.Config.Logging.BaseDir,
		Tool:          a.Name,
		RetentionRuns: a.Config.Logging.RetentionRuns,
		Metadata: map[string]interface{}{
			"program":  a.Request.Program(),
			"args":     a.Request.Args(),
			"elevated": a.Request.ElevationAttempted(),
			"version":  version.Version().Version,
		},
	})
	if err != nil {
		a.Log.Warning("Session logging disabled: %v", err)
		return
	}
	a.Session = s
	a.Log.AttachSession(s)
	a.Log.Debug("Session %s logging to %s", s.ID(), s.Dir())
}

// Finish closes the session log, pauses so an interactive console stays
// readable and exits. A nil err exits with exitcode.Success.
func (a *App) Finish(err error) {
	code := exitcode.Success
	status := "success"
	if err != nil {
		code = exitcode.Failure
		status = "failed"
		a.Log.Error("%v", err)
	}
	if a.Session != nil {
		if cerr := a.Session.Close(status); cerr != nil {
			a.Log.Warning("Failed to close session log: %v", cerr)
		}
	}
	if !a.Common.NoPause && a.Interactive() {
		a.Prompt.Pause(time.Duration(a.Config.ExitPauseSeconds) * time.Second)
	}
	a.Exit(code)
}
