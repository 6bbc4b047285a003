package migration

import "fmt"

// StepError aborts a run. It names the failed step, the last state reached
// and, once known, the application concerned.
type StepError struct {
	Step          Step
	Reached       State
	ApplicationID string
	Err           error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// UnreachableError is a verification that used up its polling budget.
type UnreachableError struct {
	ApplicationID string
	Attempts      int
	Err           error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("application %s is not reachable after %d attempts: %v", e.ApplicationID, e.Attempts, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// RestartWarning is a failed restart. The run goes on.
type RestartWarning struct {
	ApplicationID string
	Err           error
}

func (e *RestartWarning) Error() string {
	return fmt.Sprintf("application %s could not be restarted: %v", e.ApplicationID, e.Err)
}

func (e *RestartWarning) Unwrap() error { return e.Err }

// StaleSessionError is a cached session the platform no longer accepts.
// The cache has been deleted when it is returned.
type StaleSessionError struct {
	Identity string
	Err      error
}

func (e *StaleSessionError) Error() string {
	return fmt.Sprintf("the saved session of %s has expired, log in again: %v", e.Identity, e.Err)
}

func (e *StaleSessionError) Unwrap() error { return e.Err }
