// pkg/cmdline/powershell.go - PowerShell string literal quoting.

package cmdline

import "strings"

// PowerShell treats the typographic single quotes as ordinary single quotes
// inside a single-quoted literal, so they need doubling as well.
var singleQuotes = "'‘’‚‛"

// QuotePowerShell returns s as a PowerShell single-quoted string literal.
// Nothing inside a single-quoted literal is expanded; quote characters are doubled.
func QuotePowerShell(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		if strings.ContainsRune(singleQuotes, r) {
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}
