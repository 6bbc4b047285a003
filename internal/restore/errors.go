package restore

import "fmt"

// Kind classifies restore failures.
type Kind string

const (
	KindMalformedURI Kind = "malformed-uri"
	KindLaunchFailed Kind = "launch-failed"
	KindExitCode     Kind = "exit-code"
	KindPreflight    Kind = "preflight"
)

// Error is a failed restore. None of its kinds is retryable: a partial
// restore with --drop must not be re-run blindly.
type Error struct {
	Kind     Kind
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformedURI:
		return fmt.Sprintf("malformed database URI: %v", e.Err)
	case KindLaunchFailed:
		return fmt.Sprintf("cannot launch restore: %v", e.Err)
	case KindPreflight:
		return fmt.Sprintf("database is not reachable: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("restore exited with code %d: %v", e.ExitCode, e.Err)
		}
		return fmt.Sprintf("restore exited with code %d", e.ExitCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// LaunchError is returned by runners that could not start the restore or
// could not observe its outcome.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
