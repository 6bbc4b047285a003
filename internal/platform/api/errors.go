package api

import (
	"fmt"
	"net/http"
)

// APIError is a failed control call: either a transport failure (Err set)
// or an unexpected status/body from the server.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: server responded with %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: server responded with %d", e.Op, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Unauthorized reports whether the server rejected the session.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AuthError is a rejected login or signup.
type AuthError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	if e.WrongCredentials() {
		return "wrong username or password; wait 1 minute and try again"
	}
	if e.Body != "" {
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
}

// WrongCredentials reports whether the failure is the operator's to fix by
// entering other credentials.
func (e *AuthError) WrongCredentials() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ProvisionError is a rejected application creation (invalid name, quota).
type ProvisionError struct {
	Name       string
	StatusCode int
	Body       string
}

func (e *ProvisionError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("cannot create application %q: %s", e.Name, e.Body)
	}
	return fmt.Sprintf("cannot create application %q: server responded with %d: %s", e.Name, e.StatusCode, e.Body)
}
