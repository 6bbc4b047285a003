package migration

import (
	"context"

	"m2b4a/internal/domain/model"
)

// Platform is the control API of the hosting platform.
type Platform interface {
	Authenticate(ctx context.Context, identity, secret string) (model.Credential, error)
	Register(ctx context.Context, identity, secret string) (model.Credential, error)
	CreateApplication(ctx context.Context, cred model.Credential, name string) (model.Application, error)
	ListApplications(ctx context.Context, cred model.Credential) ([]model.ApplicationSummary, error)
	GetApplication(ctx context.Context, cred model.Credential, id string) (model.Application, error)
	RestartApplication(ctx context.Context, cred model.Credential, id string) error
	VerifyReachable(ctx context.Context, app model.Application) error
}

// Restorer loads a database dump into the application's database.
type Restorer interface {
	Restore(ctx context.Context, connectionURI, dumpPath string, drop bool) error
}

// FileUploader copies a directory of files to the application.
type FileUploader interface {
	UploadAll(ctx context.Context, app model.Application, dir string) error
}

// SessionStore caches a credential between runs.
type SessionStore interface {
	Load() (model.Credential, bool)
	Save(cred model.Credential) error
	Delete() error
}

// Prompter answers the questions a run needs. The interactive wizard and
// the plan file both implement it.
type Prompter interface {
	// ReuseSession asks whether the cached session of identity should be used.
	ReuseSession(ctx context.Context, identity string) (bool, error)
	// HasAccount asks whether the operator already has an account; false
	// leads to a signup.
	HasAccount(ctx context.Context) (bool, error)
	Identity(ctx context.Context) (string, error)
	Secret(ctx context.Context) (string, error)
	// SaveSession asks whether the new session should be cached.
	SaveSession(ctx context.Context) (bool, error)
	// SelectApplication offers the existing applications. ok is false when
	// the operator wants a new application instead.
	SelectApplication(ctx context.Context, apps []model.ApplicationSummary) (selected model.ApplicationSummary, ok bool, err error)
	// Drop asks whether the existing collections of app are dropped before
	// the restore.
	Drop(ctx context.Context, app model.Application) (bool, error)
	ApplicationName(ctx context.Context) (string, error)
	DumpPath(ctx context.Context) (string, error)
	// FilesPath returns the directory of files to upload. ok is false when
	// there are no files.
	FilesPath(ctx context.Context) (path string, ok bool, err error)
}
