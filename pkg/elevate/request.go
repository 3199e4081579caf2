// pkg/elevate/request.go - the invocation request derived once from the process argument vector.

package elevate

import "os"

// Marker is the reserved argument that tells a process it was started as an
// elevation retry. It is never forwarded to the tool's own flag parsing.
const Marker = "--elevated"

// Request describes how the current process was invoked. It is built once at
// process start and is read-only afterwards.
type Request struct {
	program    string
	executable string
	args       []string
	attempted  bool
}

// NewRequest builds a Request from a full argument vector (argv[0] included).
// The executable used for relaunching is resolved with os.Executable and falls
// back to argv[0].
func NewRequest(argv []string) Request {
	exe, err := os.Executable()
	if err != nil {
		exe = ""
	}
	return newRequest(argv, exe)
}

func newRequest(argv []string, executable string) Request {
	var program string
	if len(argv) > 0 {
		program = argv[0]
	}
	if executable == "" {
		executable = program
	}

	req := Request{
		program:    program,
		executable: executable,
		args:       []string{},
	}
	if len(argv) > 1 {
		for _, a := range argv[1:] {
			if a == Marker {
				req.attempted = true
				continue
			}
			req.args = append(req.args, a)
		}
	}
	return req
}

// Program returns argv[0] as the process received it.
func (r Request) Program() string { return r.program }

// Executable returns the path used to relaunch the program.
func (r Request) Executable() string { return r.executable }

// Args returns a copy of the user arguments with every elevation marker removed.
func (r Request) Args() []string {
	out := make([]string, len(r.args))
	copy(out, r.args)
	return out
}

// ElevationAttempted reports whether this process is itself an elevation retry.
func (r Request) ElevationAttempted() bool { return r.attempted }

// relaunchArgs is the argument list handed to the elevated child: the marker
// first, then the original arguments.
func (r Request) relaunchArgs() []string {
	out := make([]string, 0, len(r.args)+1)
	out = append(out, Marker)
	return append(out, r.args...)
}
