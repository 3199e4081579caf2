// pkg/exitcode/exitcode.go - process exit codes shared by the winadmin tools.

package exitcode

// An elevated relaunch exits with whatever code its child returned; these
// are the codes the tools choose themselves.
const (
	Success = 0 // Work completed, or the user cancelled at a prompt
	Failure = 1 // Unsupported platform, elevation failure, or a failed external command
	Usage   = 2 // Invalid flags or configuration
)
