package restore

import (
	"context"
	"fmt"
	"path/filepath"

	"m2b4a/pkg/files"
	log "m2b4a/pkg/log"
)

// PreflightFunc checks the target database before the restore starts.
type PreflightFunc func(ctx context.Context, d Descriptor) error

// Invoker turns a connection URI and a dump directory into a restore run.
type Invoker struct {
	runner    Runner
	binary    string
	out       OutputFunc
	preflight PreflightFunc
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithOutput sends restore output to out instead of the logger.
func WithOutput(out OutputFunc) InvokerOption {
	return func(i *Invoker) { i.out = out }
}

// WithPreflight runs check before launching the restore.
func WithPreflight(check PreflightFunc) InvokerOption {
	return func(i *Invoker) { i.preflight = check }
}

// NewInvoker returns an invoker running binary through runner.
func NewInvoker(runner Runner, binary string, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		runner: runner,
		binary: binary,
		out:    LogOutput,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Restore loads the dump at dumpPath into the database behind
// connectionURI, dropping existing collections first when drop is set.
// The result is never retried by this package.
func (inv *Invoker) Restore(ctx context.Context, connectionURI, dumpPath string, drop bool) error {
	dumpPath, err := files.ExpandHome(dumpPath)
	if err != nil {
		return &Error{Kind: KindLaunchFailed, Err: err}
	}
	// A relative bind source is a named volume to Docker.
	if dumpPath, err = filepath.Abs(dumpPath); err != nil {
		return &Error{Kind: KindLaunchFailed, Err: err}
	}

	d, err := ParseConnectionURI(connectionURI)
	if err != nil {
		return &Error{Kind: KindMalformedURI, Err: err}
	}

	if inv.preflight != nil {
		if err := inv.preflight(ctx, d); err != nil {
			return &Error{Kind: KindPreflight, Err: err}
		}
	}

	job := NewJob(inv.binary, d, dumpPath, drop)
	log.Info("Restoring your database", "host", d.Host, "database", d.Database, "drop", drop, "dump", dumpPath)
	log.Debug("Restore command", "command", job.CommandLine())

	code, err := inv.runner.Run(ctx, job, inv.out)
	if err != nil {
		return &Error{Kind: KindLaunchFailed, Err: err}
	}
	if code != 0 {
		restoreErr := &Error{Kind: KindExitCode, ExitCode: code}
		if ctx.Err() != nil {
			restoreErr.Err = fmt.Errorf("interrupted: %w", ctx.Err())
		}
		return restoreErr
	}
	log.Info("Database restored", "database", d.Database)
	return nil
}
