// pkg/elevate/probe.go - rights probes.

package elevate

import (
	"fmt"
	"strings"
)

// Probe reports whether the current process holds administrative rights.
// A probe never fails: anything that prevents an answer counts as "not elevated".
type Probe func() bool

// ProbeMethod names a Probe in configuration.
type ProbeMethod string

const (
	// ProbeToken inspects the elevation flag of the process token.
	ProbeToken ProbeMethod = "token"
	// ProbeMembership checks the token for an enabled Administrators SID.
	ProbeMembership ProbeMethod = "membership"
	// ProbeNetSession runs "net session", which only succeeds for administrators.
	ProbeNetSession ProbeMethod = "netsession"
)

// NewProbe returns the Probe for a configured method.
func NewProbe(method ProbeMethod) (Probe, error) {
	switch ProbeMethod(strings.ToLower(string(method))) {
	case "", ProbeToken:
		return tokenProbe, nil
	case ProbeMembership:
		return membershipProbe, nil
	case ProbeNetSession:
		return netSessionProbe, nil
	default:
		return nil, fmt.Errorf("unknown rights probe %q", method)
	}
}
