// Package upload copies a directory of static files to an application's
// file storage, one file at a time, retrying each file a bounded number of
// times.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"m2b4a/internal/domain/model"
	"m2b4a/pkg/backoff"
	"m2b4a/pkg/files"
	log "m2b4a/pkg/log"
)

const (
	// DefaultRetries is the number of attempts after the first one.
	DefaultRetries = 5
	// DefaultDelay separates two attempts of the same file.
	DefaultDelay = time.Second
)

// FileStore accepts a single file for an application.
type FileStore interface {
	UploadFile(ctx context.Context, app model.Application, name string, r io.Reader) error
}

// Task is one file to upload.
type Task struct {
	Name    string
	Path    string
	Size    int64
	Attempt int
}

// Error is a file that could not be uploaded.
type Error struct {
	File     string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("cannot upload %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("failed to upload %s after %d attempts: %v", e.File, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Uploader uploads directories through a FileStore.
type Uploader struct {
	store  FileStore
	policy backoff.Policy
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithPolicy replaces the per-file retry policy.
func WithPolicy(p backoff.Policy) Option {
	return func(u *Uploader) { u.policy = p }
}

// NewUploader returns an uploader making 1 + DefaultRetries attempts per file.
func NewUploader(store FileStore, opts ...Option) *Uploader {
	u := &Uploader{
		store:  store,
		policy: backoff.Fixed(1+DefaultRetries, DefaultDelay),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadAll uploads every regular file directly under dir, in directory
// order, and stops at the first file that cannot be uploaded.
func (u *Uploader) UploadAll(ctx context.Context, app model.Application, dir string) error {
	dir, err := files.ExpandHome(dir)
	if err != nil {
		return &Error{File: dir, Err: err}
	}
	entries, err := files.ListRegular(dir)
	if err != nil {
		return &Error{File: dir, Err: err}
	}

	log.Info("Uploading files", "directory", dir, "count", len(entries))
	for _, entry := range entries {
		task := &Task{Name: entry.Name, Path: entry.Path, Size: entry.Size}
		if err := u.upload(ctx, app, task); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) upload(ctx context.Context, app model.Application, task *Task) error {
	logger := log.With("file", task.Name, "size", humanize.IBytes(uint64(task.Size)))
	logger.Info("Uploading file")

	err := u.policy.Run(ctx, func(ctx context.Context, attempt int) error {
		task.Attempt = attempt
		// A fresh reader per attempt; a failed attempt may have consumed the last one.
		f, err := os.Open(task.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return u.store.UploadFile(ctx, app, task.Name, f)
	}, func(err error, attempt int) {
		logger.Warn("File upload attempt failed", "attempt", attempt, "error", err)
	})
	if err != nil {
		var exhausted *backoff.ExhaustedError
		if errors.As(err, &exhausted) {
			err = exhausted.Err
		}
		return &Error{File: task.Name, Attempts: task.Attempt, Err: err}
	}

	logger.Info("File uploaded", "attempts", task.Attempt)
	return nil
}
