package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"m2b4a/internal/domain/model"
	"m2b4a/pkg/backoff"
	"m2b4a/pkg/backoff/backofftest"
	log "m2b4a/pkg/log"
)

var errUnavailable = errors.New("503 service unavailable")

type fakeStore struct {
	mu       sync.Mutex
	failures map[string]int
	attempts map[string]int
	bodies   map[string][]string
	order    []string
}

func newFakeStore(failures map[string]int) *fakeStore {
	return &fakeStore{
		failures: failures,
		attempts: make(map[string]int),
		bodies:   make(map[string][]string),
	}
}

func (s *fakeStore) UploadFile(_ context.Context, app model.Application, name string, r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[name]++
	s.bodies[name] = append(s.bodies[name], string(body))
	if s.attempts[name] <= s.failures[name] {
		return errUnavailable
	}
	s.order = append(s.order, name)
	return nil
}

func writeFiles(c *qt.C, names ...string) string {
	dir := c.TempDir()
	for _, name := range names {
		c.Assert(os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o644), qt.IsNil)
	}
	return dir
}

func newTestUploader(store FileStore) (*Uploader, *backofftest.RecordingClock) {
	clk := backofftest.NewRecordingClock(time.Unix(0, 0))
	policy := backoff.Fixed(1+DefaultRetries, DefaultDelay).WithClock(clk)
	return NewUploader(store, WithPolicy(policy)), clk
}

func TestUploadAllRetriesUpToFiveTimes(t *testing.T) {
	for failures := 0; failures <= DefaultRetries; failures++ {
		t.Run(fmt.Sprintf("failures=%d", failures), func(t *testing.T) {
			c := qt.New(t)
			dir := writeFiles(c, "logo.png")
			store := newFakeStore(map[string]int{"logo.png": failures})
			uploader, clk := newTestUploader(store)

			err := uploader.UploadAll(context.Background(), model.Application{}, dir)

			c.Assert(err, qt.IsNil)
			c.Assert(store.attempts["logo.png"], qt.Equals, failures+1)
			c.Assert(clk.Elapsed(), qt.Equals, time.Duration(failures)*time.Second)
			// Every attempt re-reads the whole file.
			for _, body := range store.bodies["logo.png"] {
				c.Assert(body, qt.Equals, "content of logo.png")
			}
		})
	}
}

func TestUploadAllLogsEveryFailedAttempt(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	log.SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	c.Cleanup(func() { log.InitLogTo(io.Discard, "info", log.FormatText) })

	dir := writeFiles(c, "logo.png")
	uploader, _ := newTestUploader(newFakeStore(map[string]int{"logo.png": 2}))
	c.Assert(uploader.UploadAll(context.Background(), model.Application{}, dir), qt.IsNil)

	var attempts []float64
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var record map[string]any
		c.Assert(dec.Decode(&record), qt.IsNil)
		if record["msg"] == "File upload attempt failed" {
			c.Assert(record["file"], qt.Equals, "logo.png")
			attempts = append(attempts, record["attempt"].(float64))
		}
	}
	c.Assert(attempts, qt.DeepEquals, []float64{1, 2})
}

func TestUploadAllStopsAtFirstFailedFile(t *testing.T) {
	c := qt.New(t)
	dir := writeFiles(c, "a.txt", "b.txt")
	store := newFakeStore(map[string]int{"a.txt": 6})
	uploader, clk := newTestUploader(store)

	err := uploader.UploadAll(context.Background(), model.Application{}, dir)

	var uploadErr *Error
	c.Assert(errors.As(err, &uploadErr), qt.IsTrue)
	c.Assert(uploadErr.File, qt.Equals, "a.txt")
	c.Assert(uploadErr.Attempts, qt.Equals, 6)
	c.Assert(err, qt.ErrorIs, errUnavailable)
	c.Assert(store.attempts["a.txt"], qt.Equals, 6)
	c.Assert(store.attempts["b.txt"], qt.Equals, 0)
	c.Assert(clk.Waits(), qt.HasLen, 5)
}

func TestUploadAllSkipsDirectoriesAndSymlinks(t *testing.T) {
	c := qt.New(t)
	dir := writeFiles(c, "a.txt", "b.txt")
	c.Assert(os.Mkdir(filepath.Join(dir, "nested"), 0o755), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "nested", "deep.txt"), []byte("x"), 0o644), qt.IsNil)
	if err := os.Symlink(filepath.Join(dir, "a.txt"), filepath.Join(dir, "link.txt")); err != nil {
		c.Logf("symlinks unsupported: %v", err)
	}

	store := newFakeStore(nil)
	uploader, _ := newTestUploader(store)
	err := uploader.UploadAll(context.Background(), model.Application{}, dir)

	c.Assert(err, qt.IsNil)
	c.Assert(store.order, qt.DeepEquals, []string{"a.txt", "b.txt"})
}

func TestUploadAllMissingDirectory(t *testing.T) {
	c := qt.New(t)
	uploader, _ := newTestUploader(newFakeStore(nil))

	err := uploader.UploadAll(context.Background(), model.Application{}, filepath.Join(c.TempDir(), "absent"))

	var uploadErr *Error
	c.Assert(errors.As(err, &uploadErr), qt.IsTrue)
	c.Assert(uploadErr.Attempts, qt.Equals, 0)
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)
}

func TestUploadAllEmptyDirectory(t *testing.T) {
	c := qt.New(t)
	store := newFakeStore(nil)
	uploader, _ := newTestUploader(store)

	c.Assert(uploader.UploadAll(context.Background(), model.Application{}, c.TempDir()), qt.IsNil)
	c.Assert(store.order, qt.HasLen, 0)
}
