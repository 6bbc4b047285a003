package restore

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sync/errgroup"

	log "m2b4a/pkg/log"
)

// ProcessRunner runs the restore executable as a child process. Cancelling
// the context kills the child.
type ProcessRunner struct{}

// NewProcessRunner returns a runner for local executables.
func NewProcessRunner() *ProcessRunner {
	return &ProcessRunner{}
}

// Run implements Runner. Both output streams are drained concurrently and
// completely before the exit status is collected.
func (r *ProcessRunner) Run(ctx context.Context, job Job, out OutputFunc) (int, error) {
	out = serialize(out)

	cmd := exec.CommandContext(ctx, job.Binary, job.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, &LaunchError{Binary: job.Binary, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, &LaunchError{Binary: job.Binary, Err: err}
	}

	log.Debug("Starting restore process", "command", job.CommandLine())
	if err := cmd.Start(); err != nil {
		return -1, &LaunchError{Binary: job.Binary, Err: err}
	}

	var g errgroup.Group
	g.Go(func() error { return drain(stdout, Stdout, out) })
	g.Go(func() error { return drain(stderr, Stderr, out) })
	drainErr := g.Wait()

	// Wait closes the pipes, so it must only run once both readers are done.
	waitErr := cmd.Wait()
	if drainErr != nil {
		log.Warn("Restore output was not fully readable", "error", drainErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, &LaunchError{Binary: job.Binary, Err: fmt.Errorf("waiting for process: %w", waitErr)}
	}
	return 0, nil
}
