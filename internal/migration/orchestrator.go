// Package migration runs the end-to-end migration of a database dump and a
// directory of files into a hosted application.
package migration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"m2b4a/internal/domain/model"
	"m2b4a/pkg/backoff"
	log "m2b4a/pkg/log"
)

const (
	// DefaultVerifyAttempts bounds each reachability poll.
	DefaultVerifyAttempts = 5
	// DefaultVerifyDelay separates two probes.
	DefaultVerifyDelay = time.Second
)

// Result describes a run that reached the end.
type Result struct {
	Outcome     Outcome
	Application model.Application
	// Warnings holds the failures the run went past: a *RestartWarning
	// and, for a degraded run, the *UnreachableError of the last check.
	Warnings []error
}

// runContext is the state a run accumulates, step by step.
type runContext struct {
	credential  model.Credential
	fromCache   bool
	registered  bool
	application model.Application
	drop        bool
	dumpPath    string
	filesPath   string
}

// Orchestrator drives one migration run.
type Orchestrator struct {
	platform Platform
	restorer Restorer
	uploader FileUploader
	sessions SessionStore
	prompter Prompter
	verify   backoff.Policy

	state  State
	run    runContext
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithVerifyPolicy replaces the reachability polling policy.
func WithVerifyPolicy(p backoff.Policy) Option {
	return func(o *Orchestrator) { o.verify = p }
}

// New returns an orchestrator wired to its collaborators.
func New(platform Platform, restorer Restorer, uploader FileUploader, sessions SessionStore, prompter Prompter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		platform: platform,
		restorer: restorer,
		uploader: uploader,
		sessions: sessions,
		prompter: prompter,
		verify:   backoff.Fixed(DefaultVerifyAttempts, DefaultVerifyDelay),
		state:    StateStart,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the last state the run reached.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the migration. Steps run strictly in order; an error is
// always a *StepError and leaves the run in StateAborted.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	o.run = runContext{}
	o.state = StateStart
	o.logger = log.With("run_id", uuid.NewString())

	steps := []struct {
		step Step
		to   State
		fn   func(context.Context) error
	}{
		{StepAuthenticate, StateAuthenticated, o.authenticate},
		{StepResolveApplication, StateAppResolved, o.resolveApplication},
		{StepVerifyApplication, StateAppVerified, o.verifyApplication},
		{StepRestoreDatabase, StateDataRestored, o.restoreDatabase},
		{StepUploadFiles, StateFilesUploaded, o.uploadFiles},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return Result{}, o.abort(s.step, err)
		}
		if s.to == StateFilesUploaded && o.run.filesPath == "" {
			continue
		}
		o.advance(s.to)
	}

	result := Result{Outcome: OutcomeSuccess}

	if err := o.platform.RestartApplication(ctx, o.run.credential, o.run.application.ID); err != nil {
		warning := &RestartWarning{ApplicationID: o.run.application.ID, Err: err}
		o.logger.Warn("Restart failed, checking the application anyway", "app_id", o.run.application.ID, "error", err)
		result.Warnings = append(result.Warnings, warning)
	} else {
		o.advance(StateAppRestarted)
	}

	if err := o.verifyApplication(ctx); err != nil {
		if ctx.Err() != nil {
			return Result{}, o.abort(StepReverifyApplication, err)
		}
		o.logger.Error("Application did not answer after the restart", "app_id", o.run.application.ID, "error", err)
		result.Outcome = OutcomeDegraded
		result.Warnings = append(result.Warnings, err)
	} else {
		o.advance(StateAppReverified)
	}

	o.advance(StateDone)
	result.Application = o.run.application
	return result, nil
}

func (o *Orchestrator) advance(to State) {
	o.logger.Debug("Migration state changed", "from", o.state, "to", to)
	o.state = to
}

func (o *Orchestrator) abort(step Step, err error) error {
	stepErr := &StepError{
		Step:          step,
		Reached:       o.state,
		ApplicationID: o.run.application.ID,
		Err:           err,
	}
	o.logger.Error("Migration aborted", "step", step, "reached", o.state, "error", err)
	o.state = StateAborted
	return stepErr
}

func (o *Orchestrator) authenticate(ctx context.Context) error {
	if cached, ok := o.sessions.Load(); ok {
		reuse, err := o.prompter.ReuseSession(ctx, cached.Identity)
		if err != nil {
			return err
		}
		if reuse {
			o.logger.Info("Using saved session", "identity", cached.Identity)
			o.run.credential = cached
			o.run.fromCache = true
			return nil
		}
	}

	hasAccount, err := o.prompter.HasAccount(ctx)
	if err != nil {
		return err
	}
	identity, err := o.prompter.Identity(ctx)
	if err != nil {
		return err
	}
	secret, err := o.prompter.Secret(ctx)
	if err != nil {
		return err
	}

	if !hasAccount {
		o.logger.Info("Creating account", "identity", identity)
		if _, err := o.platform.Register(ctx, identity, secret); err != nil {
			return err
		}
		o.run.registered = true
	}

	cred, err := o.platform.Authenticate(ctx, identity, secret)
	if err != nil {
		return err
	}
	o.run.credential = cred
	o.logger.Info("Logged in", "identity", identity)

	save, err := o.prompter.SaveSession(ctx)
	if err != nil {
		return err
	}
	if save {
		if err := o.sessions.Save(cred); err != nil {
			o.logger.Warn("Failed to save session", "error", err)
		}
	} else if err := o.sessions.Delete(); err != nil {
		o.logger.Warn("Failed to delete saved session", "error", err)
	}
	return nil
}

func (o *Orchestrator) resolveApplication(ctx context.Context) error {
	// A fresh account has no applications.
	if !o.run.registered {
		apps, err := o.platform.ListApplications(ctx, o.run.credential)
		if err != nil {
			if o.run.fromCache {
				if delErr := o.sessions.Delete(); delErr != nil {
					o.logger.Warn("Failed to delete saved session", "error", delErr)
				}
				return &StaleSessionError{Identity: o.run.credential.Identity, Err: err}
			}
			return err
		}

		if len(apps) > 0 {
			selected, ok, err := o.prompter.SelectApplication(ctx, apps)
			if err != nil {
				return err
			}
			if ok {
				return o.useApplication(ctx, selected)
			}
		}
	}

	name, err := o.prompter.ApplicationName(ctx)
	if err != nil {
		return err
	}
	app, err := o.platform.CreateApplication(ctx, o.run.credential, name)
	if err != nil {
		return err
	}
	o.logger.Info("Application created", "app", app.Name, "app_id", app.ID)
	o.run.application = app
	return nil
}

func (o *Orchestrator) useApplication(ctx context.Context, selected model.ApplicationSummary) error {
	app, err := o.platform.GetApplication(ctx, o.run.credential, selected.ID)
	if err != nil {
		return err
	}
	drop, err := o.prompter.Drop(ctx, app)
	if err != nil {
		return err
	}
	o.logger.Info("Using existing application", "app", app.Name, "app_id", app.ID, "drop", drop)
	o.run.application = app
	o.run.drop = drop
	return nil
}

// verifyApplication polls the application until it answers or the policy
// gives up.
func (o *Orchestrator) verifyApplication(ctx context.Context) error {
	app := o.run.application
	o.logger.Info("Checking that the application answers", "app_id", app.ID)

	err := o.verify.Run(ctx, func(ctx context.Context, _ int) error {
		return o.platform.VerifyReachable(ctx, app)
	}, func(err error, attempt int) {
		o.logger.Debug("Application not reachable yet", "attempt", attempt, "error", err)
	})

	var exhausted *backoff.ExhaustedError
	if errors.As(err, &exhausted) {
		return &UnreachableError{
			ApplicationID: app.ID,
			Attempts:      exhausted.Attempts,
			Err:           exhausted.Err,
		}
	}
	return err
}

func (o *Orchestrator) restoreDatabase(ctx context.Context) error {
	dumpPath, err := o.prompter.DumpPath(ctx)
	if err != nil {
		return err
	}
	o.run.dumpPath = dumpPath
	return o.restorer.Restore(ctx, o.run.application.DatabaseURL, dumpPath, o.run.drop)
}

func (o *Orchestrator) uploadFiles(ctx context.Context) error {
	path, ok, err := o.prompter.FilesPath(ctx)
	if err != nil {
		return err
	}
	if !ok {
		o.logger.Info("No files to upload")
		return nil
	}
	o.run.filesPath = path
	return o.uploader.UploadAll(ctx, o.run.application, path)
}
