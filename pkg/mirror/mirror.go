// pkg/mirror/mirror.go - mirroring directory trees to a backup drive with robocopy.

package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/windowsadmins/winadmin/pkg/runner"
)

// ErrInvalidDrive is returned for a destination outside the allowed list.
var ErrInvalidDrive = errors.New("invalid destination drive")

// Task is one source/destination pair.
type Task struct {
	Source      string
	Destination string
}

// Plan is a fully resolved mirroring run.
type Plan struct {
	OriginRoot string
	SystemRoot string
	DestRoot   string
	Flags      []string
	Threshold  int
	Tasks      []Task
}

// PlanOptions are the inputs BuildPlan resolves.
type PlanOptions struct {
	OriginDrive   string
	SystemDrive   string
	DestLetter    string
	AllowedDrives []string
	Flags         []string
	Threshold     int
	Tasks         []Task // paths may use {system}, {origin} and {dest}
}

// driveName turns "h", "H:" or `H:\` into "H:".
func driveName(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), `\/`)
	s = strings.TrimSuffix(s, ":")
	return strings.ToUpper(s) + ":"
}

// BuildPlan validates the destination letter and expands the task templates.
func BuildPlan(opts PlanOptions) (Plan, error) {
	choice := strings.ToLower(strings.TrimSpace(opts.DestLetter))
	allowed := false
	for _, d := range opts.AllowedDrives {
		if strings.ToLower(d) == choice {
			allowed = true
			break
		}
	}
	if !allowed || choice == "" {
		return Plan{}, fmt.Errorf("%w %q, choose one of %s", ErrInvalidDrive, opts.DestLetter, strings.Join(opts.AllowedDrives, "/"))
	}
	if strings.TrimSpace(opts.SystemDrive) == "" {
		return Plan{}, errors.New("system drive is not set")
	}

	origin := driveName(opts.OriginDrive)
	system := driveName(opts.SystemDrive)
	dest := driveName(choice)

	expand := strings.NewReplacer("{system}", system, "{origin}", origin, "{dest}", dest)
	tasks := make([]Task, 0, len(opts.Tasks))
	for _, t := range opts.Tasks {
		tasks = append(tasks, Task{
			Source:      expand.Replace(t.Source),
			Destination: expand.Replace(t.Destination),
		})
	}

	return Plan{
		OriginRoot: origin + `\`,
		SystemRoot: system + `\`,
		DestRoot:   dest + `\`,
		Flags:      append([]string(nil), opts.Flags...),
		Threshold:  opts.Threshold,
		Tasks:      tasks,
	}, nil
}

// SyncError reports a robocopy run whose exit code reached the failure threshold.
type SyncError struct {
	Task     Task
	ExitCode int
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("robocopy failed for source %s (exit code %d: %s)", e.Task.Source, e.ExitCode, DescribeExitCode(e.ExitCode))
}

// DescribeExitCode explains robocopy's bit-field exit code.
func DescribeExitCode(code int) string {
	if code < 0 {
		return "did not run"
	}
	if code == 0 {
		return "no changes"
	}
	var parts []string
	for _, bit := range []struct {
		mask int
		text string
	}{
		{1, "files copied"},
		{2, "extra files or directories"},
		{4, "mismatched files or directories"},
		{8, "some copies failed"},
		{16, "fatal error"},
	} {
		if code&bit.mask != 0 {
			parts = append(parts, bit.text)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ", ")
}

// Reporter receives progress messages. *logging.Logger satisfies it.
type Reporter interface {
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Syncer runs the tasks of a Plan in order.
type Syncer struct {
	Robocopy string
	Runner   runner.Runner
	Log      Reporter
}

// Run mirrors every task and stops at the first failure.
func (s *Syncer) Run(ctx context.Context, plan Plan) error {
	for _, task := range plan.Tasks {
		s.Log.Info("Syncing: %s -> %s", task.Source, task.Destination)

		cmd := runner.Command{Name: s.Robocopy, Args: append([]string{task.Source, task.Destination}, plan.Flags...)}
		s.Log.Debug("Running %s", cmd)
		res, err := s.Runner.Run(ctx, cmd)
		if err != nil {
			s.Log.Error("Robocopy failed for source: %s", task.Source)
			return err
		}
		s.Log.Debug("robocopy exited with %d (%s) after %s", res.ExitCode, DescribeExitCode(res.ExitCode), res.Duration)
		if res.ExitCode >= plan.Threshold {
			s.Log.Error("Robocopy failed for source: %s", task.Source)
			return &SyncError{Task: task, ExitCode: res.ExitCode}
		}
	}
	return nil
}
