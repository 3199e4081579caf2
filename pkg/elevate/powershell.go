// pkg/elevate/powershell.go - helper script construction for the PowerShell launcher.

package elevate

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/windowsadmins/winadmin/pkg/cmdline"
)

// powerShellScript builds the helper script. argLine is the child's argument
// list already composed into one Windows command line; it is handed to
// -ArgumentList as a single literal, since PowerShell joins array elements
// without quoting them.
func powerShellScript(path, argLine, dir string) string {
	parts := []string{
		"$ErrorActionPreference = 'Stop';",
		"$p = Start-Process",
		"-FilePath", cmdline.QuotePowerShell(path),
	}
	if argLine != "" {
		parts = append(parts, "-ArgumentList", cmdline.QuotePowerShell(argLine))
	}
	if dir != "" {
		parts = append(parts, "-WorkingDirectory", cmdline.QuotePowerShell(dir))
	}
	parts = append(parts, "-Verb RunAs -Wait -PassThru;", "[Console]::Out.WriteLine($p.ExitCode)")
	return strings.Join(parts, " ")
}

// encodePowerShell encodes a script for -EncodedCommand (base64 of UTF-16LE),
// which keeps the script clear of powershell.exe's own command-line parsing.
func encodePowerShell(script string) string {
	units := utf16.Encode([]rune(script))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		buf[2*i] = byte(u)
		buf[2*i+1] = byte(u >> 8)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// parseExitCode reads the exit code the helper printed as its last line.
func parseExitCode(out string) (int, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	code, err := strconv.ParseInt(last, 10, 32)
	if err != nil {
		return -1, fmt.Errorf("no exit code reported by elevation helper (output %q)", out)
	}
	return int(code), nil
}
