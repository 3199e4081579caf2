//go:build windows
// +build windows

package cmdline

import (
	"os"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

// splitWithProgram parses line the way the started process does, behind a
// fixed program name.
func splitWithProgram(t *testing.T, line string) []string {
	t.Helper()
	argv, err := windows.DecomposeCommandLine("prog " + line)
	require.NoError(t, err)
	return argv[1:]
}

func hasNUL(args []string) bool {
	for _, a := range args {
		if strings.ContainsRune(a, 0) {
			return true
		}
	}
	return false
}

func TestJoinRoundTrip(t *testing.T) {
	cases := [][]string{
		{"--elevated", "--config", `C:\ProgramData\WinAdmin\Config.yaml`},
		{"", "", ""},
		{`trailing\`, `trailing with space\`, `\\server\share\`},
		{`"quoted"`, `"`, `\"`, `\\"`},
		{"it's", "‘curly’", "$env:PATH", "`backtick`", "a;b", "a|b", "%PATH%"},
		{"multi word value", "\ttabbed\t"},
	}
	for _, args := range cases {
		assert.Equal(t, args, splitWithProgram(t, Join(args)), "line %s", Join(args))
	}
}

func TestJoinRoundTripProperty(t *testing.T) {
	f := func(args []string) bool {
		if hasNUL(args) {
			return true
		}
		got := splitWithProgram(t, Join(args))
		if len(got) != len(args) {
			return false
		}
		for i := range args {
			if got[i] != args[i] {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, &quick.Config{MaxCount: 1000}))
}

func TestJoinThroughPowerShellLiteral(t *testing.T) {
	f := func(args []string) bool {
		if hasNUL(args) {
			return true
		}
		got := splitWithProgram(t, unquotePowerShell(t, QuotePowerShell(Join(args))))
		if len(got) != len(args) {
			return false
		}
		for i := range args {
			if got[i] != args[i] {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, &quick.Config{MaxCount: 500}))

	args := []string{"--name", "O'Brien", "‚low‛", "a b", `C:\x y\`}
	assert.Equal(t, args, splitWithProgram(t, unquotePowerShell(t, QuotePowerShell(Join(args)))))
}

func TestProcessArgsMatchesRuntime(t *testing.T) {
	// go test passes plain -test.* flags, which both parsers read alike.
	assert.Equal(t, os.Args, ProcessArgs())
}
