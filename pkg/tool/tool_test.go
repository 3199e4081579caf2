package tool

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/winadmin/pkg/config"
	"github.com/windowsadmins/winadmin/pkg/elevate"
	"github.com/windowsadmins/winadmin/pkg/logging"
	"github.com/windowsadmins/winadmin/pkg/prompt"
)

func TestParseFiltersMarker(t *testing.T) {
	a := New("regclean", elevate.StdinIgnore)
	dryRun := a.Flags.Bool("dry-run", false, "")

	require.NoError(t, a.Parse([]string{`C:\tools\regclean.exe`, elevate.Marker, "--dry-run", "-vv", "--config", `D:\cfg.yaml`}))
	assert.True(t, *dryRun)
	assert.True(t, a.Request.ElevationAttempted())
	assert.Equal(t, 2, a.Common.Verbosity)
	assert.Equal(t, `D:\cfg.yaml`, a.Common.ConfigPath)
}

func TestParseDefaults(t *testing.T) {
	a := New("getupdates", elevate.StdinInherit)
	require.NoError(t, a.Parse([]string{"getupdates.exe"}))
	assert.Equal(t, config.ConfigPath, a.Common.ConfigPath)
	assert.False(t, a.Common.Yes)
	assert.False(t, a.Common.NoPause)
	assert.False(t, a.Request.ElevationAttempted())
}

func TestParseRejectsUnknownFlags(t *testing.T) {
	a := New("getupdates", elevate.StdinInherit)
	a.Flags.SetOutput(&bytes.Buffer{})
	assert.Error(t, a.Parse([]string{"getupdates.exe", "--bogus"}))
}

func TestNewBootstrap(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Elevation.Method = "powershell"
	cfg.Elevation.Probe = "membership"
	cfg.Elevation.PauseSeconds = 3

	b, err := NewBootstrap(cfg, elevate.StdinIgnore, logging.New(false))
	require.NoError(t, err)
	assert.Equal(t, elevate.StdinIgnore, b.Stdin)
	assert.Equal(t, 3*time.Second, b.PauseOnFailure)
	assert.NotNil(t, b.Launcher)
	assert.NotNil(t, b.Probe)

	cfg.Elevation.Method = "sudo"
	_, err = NewBootstrap(cfg, elevate.StdinIgnore, logging.New(false))
	assert.Error(t, err)
}

func newFinishApp(t *testing.T, pause int, noPause bool) (*App, *bytes.Buffer, *[]int) {
	t.Helper()
	var out bytes.Buffer
	var exits []int
	log := logging.New(false)
	log.SetOutput(&out)

	cfg := config.GetDefaultConfig()
	cfg.ExitPauseSeconds = pause

	a := New("regclean", elevate.StdinIgnore)
	a.Config = cfg
	a.Log = log
	a.Common.NoPause = noPause
	a.Prompt = prompt.New(strings.NewReader(""), &out)
	a.Exit = func(code int) { exits = append(exits, code) }
	a.Interactive = func() bool { return true }
	return a, &out, &exits
}

func TestFinish(t *testing.T) {
	a, out, exits := newFinishApp(t, 0, false)
	a.Finish(nil)
	assert.Equal(t, []int{0}, *exits)
	assert.Empty(t, out.String())

	a, out, exits = newFinishApp(t, 0, true)
	a.Finish(assert.AnError)
	assert.Equal(t, []int{1}, *exits)
	assert.Contains(t, out.String(), assert.AnError.Error())
}

func TestFinishSkipsPauseWithoutConsole(t *testing.T) {
	a, out, exits := newFinishApp(t, 30, false)
	a.Interactive = func() bool { return false }

	a.Finish(nil)
	assert.Equal(t, []int{0}, *exits)
	assert.NotContains(t, out.String(), "Exiting in")
}

func TestFinishClosesSession(t *testing.T) {
	a, _, exits := newFinishApp(t, 0, true)
	s, err := logging.OpenSession(logging.SessionConfig{BaseDir: t.TempDir(), Tool: "regclean"})
	require.NoError(t, err)
	a.Session = s

	a.Finish(nil)
	assert.Equal(t, []int{0}, *exits)
	assert.FileExists(t, filepath.Join(s.Dir(), "session.yaml"))
}

func newStartApp(t *testing.T, goos string) (*App, *bytes.Buffer, *[]int) {
	t.Helper()
	var stdout bytes.Buffer
	var exits []int
	a := New("getupdates", elevate.StdinInherit)
	a.Flags.SetOutput(&bytes.Buffer{})
	a.GOOS = goos
	a.Stdout = &stdout
	a.Stderr = &bytes.Buffer{}
	a.Exit = func(code int) { exits = append(exits, code) }
	return a, &stdout, &exits
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStartRejectsPlatformBeforeReadingConfig(t *testing.T) {
	broken := writeConfig(t, "Elevation: [\n")

	a, _, exits := newStartApp(t, "linux")
	a.start([]string{"getupdates", "--config", broken})
	assert.Equal(t, []int{1}, *exits)
	assert.Nil(t, a.Config)

	a, _, exits = newStartApp(t, "windows")
	a.start([]string{"getupdates", "--config", broken})
	assert.Equal(t, []int{2}, *exits)
}

func TestStartUsageAndVersion(t *testing.T) {
	a, _, exits := newStartApp(t, "linux")
	a.start([]string{"getupdates", "--bogus"})
	assert.Equal(t, []int{2}, *exits)

	a, stdout, exits := newStartApp(t, "linux")
	a.start([]string{"getupdates", "--version"})
	assert.Equal(t, []int{0}, *exits)
	assert.True(t, strings.HasPrefix(stdout.String(), "getupdates "))

	a, _, exits = newStartApp(t, "linux")
	a.start([]string{"getupdates", "--help"})
	assert.Equal(t, []int{0}, *exits)
}
