// pkg/config/config.go - configuration settings for the winadmin tools.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the configuration file.
const ConfigPath = `C:\ProgramData\WinAdmin\Config.yaml`

// CSPRegistryPath holds policy overrides under HKLM.
const CSPRegistryPath = `SOFTWARE\WinAdmin\Config`

// Configuration holds the configurable options for all tools in YAML format.
type Configuration struct {
	Elevation ElevationConfig `yaml:"Elevation"`
	Logging   LoggingConfig   `yaml:"Logging"`
	Updates   UpdatesConfig   `yaml:"Updates"`
	Registry  RegistryConfig  `yaml:"Registry"`
	Mirror    MirrorConfig    `yaml:"Mirror"`

	// ExitPauseSeconds keeps the console open after a tool finishes.
	ExitPauseSeconds int `yaml:"ExitPauseSeconds"`
}

// ElevationConfig selects how the elevation bootstrap probes and relaunches.
type ElevationConfig struct {
	Method       string `yaml:"Method"`       // "shellexecute" or "powershell"
	Probe        string `yaml:"Probe"`        // "token", "membership" or "netsession"
	PauseSeconds int    `yaml:"PauseSeconds"` // pause before exiting on elevation failure
}

// LoggingConfig controls the per-run session logs.
type LoggingConfig struct {
	BaseDir       string `yaml:"BaseDir"`
	Level         string `yaml:"Level"`
	RetentionRuns int    `yaml:"RetentionRuns"`
	Disabled      bool   `yaml:"Disabled"`
}

// UpdatesConfig configures getupdates.
type UpdatesConfig struct {
	Winget         string   `yaml:"Winget"`
	MinimumVersion string   `yaml:"MinimumVersion"` // empty disables the check
	ListArgs       []string `yaml:"ListArgs"`
	UpgradeArgs    []string `yaml:"UpgradeArgs"`
}

// RegistryConfig configures regclean.
type RegistryConfig struct {
	Roots   []string `yaml:"Roots"`
	Match   string   `yaml:"Match"`
	Retries int      `yaml:"Retries"`
}

// MirrorTask is one source/destination pair. Paths may contain the
// placeholders {system}, {origin} and {dest}.
type MirrorTask struct {
	Source      string `yaml:"Source"`
	Destination string `yaml:"Destination"`
}

// MirrorConfig configures drivesync.
type MirrorConfig struct {
	Robocopy         string       `yaml:"Robocopy"`
	OriginDrive      string       `yaml:"OriginDrive"`
	AllowedDrives    []string     `yaml:"AllowedDrives"`
	Flags            []string     `yaml:"Flags"`
	SuccessThreshold int          `yaml:"SuccessThreshold"`
	Tasks            []MirrorTask `yaml:"Tasks"`
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return &Configuration{
		Elevation: ElevationConfig{
			Method:       "shellexecute",
			Probe:        "token",
			PauseSeconds: 5,
		},
		Logging: LoggingConfig{
			BaseDir:       programData + `\WinAdmin\logs`,
			Level:         "INFO",
			RetentionRuns: 10,
		},
		Updates: UpdatesConfig{
			Winget:         "winget",
			MinimumVersion: "1.4",
			ListArgs:       []string{"update"},
			UpgradeArgs:    []string{"upgrade", "--all", "--accept-package-agreements", "--accept-source-agreements"},
		},
		Registry: RegistryConfig{
			Roots: []string{
				`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
				`HKLM\SOFTWARE\Wow6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
			},
			Match:   "Steam App",
			Retries: 3,
		},
		Mirror: MirrorConfig{
			Robocopy:         "robocopy",
			OriginDrive:      "H:",
			AllowedDrives:    []string{"i", "z", "t", "w", "x"},
			Flags:            []string{"/MIR", "/R:1", "/W:2", "/NFL", "/NDL"},
			SuccessThreshold: 8,
			Tasks: []MirrorTask{
				{Source: `{system}\unhome`, Destination: `{dest}\unhome`},
				{Source: `{system}\Steam`, Destination: `{dest}\zMainSteam\1`},
				{Source: `{origin}\o`, Destination: `{dest}\o`},
				{Source: `{origin}\osiso`, Destination: `{dest}\osiso`},
				{Source: `{origin}\SteamLibrary`, Destination: `{dest}\SteamLibrary`},
				{Source: `{origin}\largedrivesonly`, Destination: `{dest}\largedrivesonly`},
				{Source: `{origin}\zhnt`, Destination: `{dest}\zhnt`},
			},
		},
		ExitPauseSeconds: 5,
	}
}

// LoadConfig reads the YAML file at path over the defaults and then applies
// registry policy overrides. A missing file is not an error.
func LoadConfig(path string) (*Configuration, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	if err := loadCSPOverrides(CSPRegistryPath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a tool.
func (c *Configuration) Validate() error {
	var problems []string

	switch strings.ToLower(c.Elevation.Method) {
	case "", "shellexecute", "powershell":
	default:
		problems = append(problems, fmt.Sprintf("Elevation.Method %q is not one of shellexecute, powershell", c.Elevation.Method))
	}
	switch strings.ToLower(c.Elevation.Probe) {
	case "", "token", "membership", "netsession":
	default:
		problems = append(problems, fmt.Sprintf("Elevation.Probe %q is not one of token, membership, netsession", c.Elevation.Probe))
	}
	if c.Elevation.PauseSeconds < 0 {
		problems = append(problems, "Elevation.PauseSeconds must not be negative")
	}
	if c.ExitPauseSeconds < 0 {
		problems = append(problems, "ExitPauseSeconds must not be negative")
	}
	if strings.TrimSpace(c.Registry.Match) == "" {
		problems = append(problems, "Registry.Match must not be empty")
	}
	if c.Registry.Retries < 1 {
		problems = append(problems, "Registry.Retries must be at least 1")
	}
	if c.Mirror.SuccessThreshold <= 0 {
		problems = append(problems, "Mirror.SuccessThreshold must be positive")
	}
	for _, d := range c.Mirror.AllowedDrives {
		if len(d) != 1 || !isLetter(d[0]) {
			problems = append(problems, fmt.Sprintf("Mirror.AllowedDrives entry %q is not a drive letter", d))
		}
	}
	for i, t := range c.Mirror.Tasks {
		if strings.TrimSpace(t.Source) == "" || strings.TrimSpace(t.Destination) == "" {
			problems = append(problems, fmt.Sprintf("Mirror.Tasks[%d] needs both Source and Destination", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// YAML renders the configuration for --show-config.
func (c *Configuration) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
