package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/winadmin/pkg/config"
	"github.com/windowsadmins/winadmin/pkg/elevate"
	"github.com/windowsadmins/winadmin/pkg/logging"
	"github.com/windowsadmins/winadmin/pkg/prompt"
	"github.com/windowsadmins/winadmin/pkg/runner"
	"github.com/windowsadmins/winadmin/pkg/tool"
)

// fakeWinget answers --version and returns a fixed exit code per subcommand.
type fakeWinget struct {
	version string
	codes   map[string]int
	calls   []string
}

func (f *fakeWinget) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.calls = append(f.calls, cmd.String())
	return runner.Result{ExitCode: f.codes[cmd.Args[0]]}, nil
}

func (f *fakeWinget) Output(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.calls = append(f.calls, cmd.String())
	return runner.Result{Output: f.version}, nil
}

func withWingetRunning(t *testing.T, busy bool) {
	t.Helper()
	orig := wingetRunning
	wingetRunning = func() (bool, error) { return busy, nil }
	t.Cleanup(func() { wingetRunning = orig })
}

func testApp(t *testing.T, input string) (*tool.App, *bytes.Buffer, *[]int) {
	t.Helper()
	var out bytes.Buffer
	var exits []int
	app := tool.New("getupdates", elevate.StdinInherit)
	app.Config = config.GetDefaultConfig()
	app.Log = logging.New(false)
	app.Log.SetOutput(&out)
	app.Prompt = prompt.New(strings.NewReader(input), &out)
	app.Common.NoPause = true
	app.Exit = func(code int) { exits = append(exits, code) }
	return app, &out, &exits
}

const upgradeAll = "winget upgrade --all --accept-package-agreements --accept-source-agreements"

func TestRunUpgradesAfterConfirmation(t *testing.T) {
	withWingetRunning(t, false)
	app, out, exits := testApp(t, "y\n")
	w := &fakeWinget{version: "v1.7.10861"}

	app.Finish(run(context.Background(), app, w))
	assert.Equal(t, []int{0}, *exits)
	assert.Equal(t, []string{"winget --version", "winget update", upgradeAll}, w.calls)
	assert.Contains(t, out.String(), "Do you want to proceed with upgrading all packages? (y/n)")
	assert.Contains(t, out.String(), "All packages upgraded.")
}

func TestRunDeclinedConfirmation(t *testing.T) {
	withWingetRunning(t, false)
	app, out, exits := testApp(t, "n\n")
	w := &fakeWinget{version: "v1.7.10861"}

	app.Finish(run(context.Background(), app, w))
	assert.Equal(t, []int{0}, *exits)
	assert.Equal(t, []string{"winget --version", "winget update"}, w.calls)
	assert.Contains(t, out.String(), "Upgrade cancelled by user.")
}

func TestRunYesSkipsPrompt(t *testing.T) {
	withWingetRunning(t, false)
	app, out, exits := testApp(t, "")
	app.Common.Yes = true
	w := &fakeWinget{version: "v1.7.10861"}

	app.Finish(run(context.Background(), app, w))
	assert.Equal(t, []int{0}, *exits)
	assert.Equal(t, upgradeAll, w.calls[len(w.calls)-1])
	assert.NotContains(t, out.String(), "(y/n)")
}

func TestRunWingetFailure(t *testing.T) {
	withWingetRunning(t, false)
	app, out, exits := testApp(t, "")
	app.Common.Yes = true
	w := &fakeWinget{version: "v1.7.10861", codes: map[string]int{"upgrade": -1978335226}}

	err := run(context.Background(), app, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upgrade failed")

	app.Finish(err)
	assert.Equal(t, []int{1}, *exits)
	assert.Contains(t, out.String(), "0x8A150006")
}

func TestRunListFailureStopsBeforeUpgrade(t *testing.T) {
	withWingetRunning(t, false)
	app, _, _ := testApp(t, "y\n")
	w := &fakeWinget{version: "v1.7.10861", codes: map[string]int{"update": 1}}

	assert.ErrorContains(t, run(context.Background(), app, w), "failed to list updates")
	assert.Equal(t, []string{"winget --version", "winget update"}, w.calls)
}

func TestRunRefusesWhileWingetIsRunning(t *testing.T) {
	withWingetRunning(t, true)
	app, _, exits := testApp(t, "y\n")
	w := &fakeWinget{version: "v1.7.10861"}

	err := run(context.Background(), app, w)
	assert.ErrorContains(t, err, "another winget process is running")
	assert.Equal(t, []string{"winget --version"}, w.calls)

	app.Finish(err)
	assert.Equal(t, []int{1}, *exits)
}

func TestRunRejectsOldWinget(t *testing.T) {
	withWingetRunning(t, false)
	app, _, _ := testApp(t, "y\n")
	w := &fakeWinget{version: "v1.3.2691"}

	assert.ErrorContains(t, run(context.Background(), app, w), "update App Installer")
	assert.Len(t, w.calls, 1)
}
