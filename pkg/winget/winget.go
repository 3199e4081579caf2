// pkg/winget/winget.go - thin wrapper around the winget command-line client.

package winget

import (
	"context"
	"errors"
	"fmt"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/windowsadmins/winadmin/pkg/runner"
)

// ErrTooOld is returned when the installed winget is older than required.
var ErrTooOld = errors.New("winget is older than the required version")

// CommandError reports a winget invocation that exited nonzero.
type CommandError struct {
	Args     []string
	ExitCode int
}

func (e *CommandError) Error() string {
	// winget reports HRESULTs; show them in hex as the documentation lists them.
	return fmt.Sprintf("winget %s exited with code %d (0x%08X)", strings.Join(e.Args, " "), e.ExitCode, uint32(e.ExitCode))
}

// Client runs winget.
type Client struct {
	Path   string
	Runner runner.Runner
}

// New returns a Client for the winget executable at path.
func New(path string, r runner.Runner) *Client {
	if path == "" {
		path = "winget"
	}
	return &Client{Path: path, Runner: r}
}

// Version returns the installed winget version ("v1.7.10861" is reported as 1.7.10861).
func (c *Client) Version(ctx context.Context) (*version.Version, error) {
	cmd := runner.Command{Name: c.Path, Args: []string{"--version"}}
	res, err := c.Runner.Output(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &CommandError{Args: cmd.Args, ExitCode: res.ExitCode}
	}
	raw := strings.TrimPrefix(strings.TrimSpace(res.Output), "v")
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("unexpected winget version %q: %w", strings.TrimSpace(res.Output), err)
	}
	return v, nil
}

// CheckMinimum fails with ErrTooOld when the installed winget is older than minimum.
// An empty minimum disables the check.
func (c *Client) CheckMinimum(ctx context.Context, minimum string) (*version.Version, error) {
	if strings.TrimSpace(minimum) == "" {
		return nil, nil
	}
	want, err := version.NewVersion(minimum)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum winget version %q: %w", minimum, err)
	}
	have, err := c.Version(ctx)
	if err != nil {
		return nil, err
	}
	if have.LessThan(want) {
		return have, fmt.Errorf("%w: have %s, need %s", ErrTooOld, have, want)
	}
	return have, nil
}

// Run executes winget with args, streaming its output to the console.
func (c *Client) Run(ctx context.Context, args []string) error {
	res, err := c.Runner.Run(ctx, runner.Command{Name: c.Path, Args: args})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &CommandError{Args: args, ExitCode: res.ExitCode}
	}
	return nil
}
