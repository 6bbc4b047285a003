package restore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

type fakeRunner struct {
	jobs []Job
	code int
	err  error
}

func (f *fakeRunner) Run(_ context.Context, job Job, out OutputFunc) (int, error) {
	f.jobs = append(f.jobs, job)
	out(Stdout, "done")
	return f.code, f.err
}

func TestInvokerRestore(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}
	lines := newCapture()

	err := NewInvoker(runner, "/bin/mongorestore", WithOutput(lines.out)).
		Restore(context.Background(), "mongodb://u:p@h:27017/db", "/tmp/dump", true)

	c.Assert(err, qt.IsNil)
	c.Assert(runner.jobs, qt.HasLen, 1)
	c.Assert(runner.jobs[0].Binary, qt.Equals, "/bin/mongorestore")
	c.Assert(runner.jobs[0].Args, qt.DeepEquals, BuildArgs(testDescriptor, "/tmp/dump", true))
	c.Assert(lines.get(Stdout), qt.DeepEquals, []string{"done"})
}

func TestInvokerExpandsHome(t *testing.T) {
	c := qt.New(t)
	home, err := os.UserHomeDir()
	c.Assert(err, qt.IsNil)
	runner := &fakeRunner{}

	err = NewInvoker(runner, "mongorestore", WithOutput(newCapture().out)).
		Restore(context.Background(), "mongodb://u:p@h/db", "~/dump", false)

	c.Assert(err, qt.IsNil)
	c.Assert(runner.jobs[0].DumpPath, qt.Equals, filepath.Join(home, "dump"))
}

func TestInvokerMalformedURINeverLaunches(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}

	err := NewInvoker(runner, "mongorestore").Restore(context.Background(), "mongodb://h/db", "/tmp/dump", false)

	var restoreErr *Error
	c.Assert(errors.As(err, &restoreErr), qt.IsTrue)
	c.Assert(restoreErr.Kind, qt.Equals, KindMalformedURI)
	c.Assert(runner.jobs, qt.HasLen, 0)
}

func TestInvokerExitCode(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{code: 1}

	err := NewInvoker(runner, "mongorestore", WithOutput(newCapture().out)).
		Restore(context.Background(), "mongodb://u:p@h/db", "/tmp/dump", false)

	var restoreErr *Error
	c.Assert(errors.As(err, &restoreErr), qt.IsTrue)
	c.Assert(restoreErr.Kind, qt.Equals, KindExitCode)
	c.Assert(restoreErr.ExitCode, qt.Equals, 1)
	c.Assert(err, qt.ErrorMatches, "restore exited with code 1")
}

func TestInvokerLaunchFailure(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{code: -1, err: &LaunchError{Binary: "mongorestore", Err: os.ErrNotExist}}

	err := NewInvoker(runner, "mongorestore", WithOutput(newCapture().out)).
		Restore(context.Background(), "mongodb://u:p@h/db", "/tmp/dump", false)

	var restoreErr *Error
	c.Assert(errors.As(err, &restoreErr), qt.IsTrue)
	c.Assert(restoreErr.Kind, qt.Equals, KindLaunchFailed)
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)
}

func TestInvokerPreflight(t *testing.T) {
	c := qt.New(t)
	runner := &fakeRunner{}
	var checked Descriptor

	err := NewInvoker(runner, "mongorestore", WithPreflight(func(_ context.Context, d Descriptor) error {
		checked = d
		return errors.New("no reachable servers")
	})).Restore(context.Background(), "mongodb://u:p@h/db", "/tmp/dump", false)

	var restoreErr *Error
	c.Assert(errors.As(err, &restoreErr), qt.IsTrue)
	c.Assert(restoreErr.Kind, qt.Equals, KindPreflight)
	c.Assert(checked.Host, qt.Equals, "h")
	c.Assert(runner.jobs, qt.HasLen, 0)
}
