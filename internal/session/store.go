// Package session caches the dashboard session between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"m2b4a/internal/domain/model"
	"m2b4a/pkg/files"
	log "m2b4a/pkg/log"
)

// DefaultPath is the cache location, shared with earlier releases of the tool.
const DefaultPath = "~/.b4acookie"

// record is the on-disk layout.
type record struct {
	Cookie   cookie `json:"cookie"`
	Username string `json:"username"`
}

// cookie is written as a "name=value; name=value" string. Earlier releases
// stored the raw Set-Cookie header list instead, which is still accepted.
type cookie string

func (c *cookie) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = cookie(s)
		return nil
	}
	var headers []string
	if err := json.Unmarshal(data, &headers); err != nil {
		return fmt.Errorf("cookie is neither a string nor a list of strings: %w", err)
	}
	pairs := make([]string, 0, len(headers))
	for _, h := range headers {
		pair, _, _ := strings.Cut(h, ";")
		if pair = strings.TrimSpace(pair); pair != "" {
			pairs = append(pairs, pair)
		}
	}
	*c = cookie(strings.Join(pairs, "; "))
	return nil
}

// Store reads and writes the session cache file.
type Store struct {
	path string
}

// NewStore returns a store for the cache file at path. A leading "~" is
// expanded.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := files.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: expanded}, nil
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the cached credential. A missing, unreadable or corrupt file
// is a cache miss, never an error.
func (s *Store) Load() (model.Credential, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug("Session cache unreadable", "path", s.path, "error", err)
		}
		return model.Credential{}, false
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		log.Debug("Session cache corrupt", "path", s.path, "error", err)
		return model.Credential{}, false
	}
	cred := model.Credential{Token: string(r.Cookie), Identity: r.Username}
	if !cred.Valid() {
		return model.Credential{}, false
	}
	return cred, true
}

// Save writes cred to the cache, readable only by the current user.
func (s *Store) Save(cred model.Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(record{Cookie: cookie(cred.Token), Username: cred.Identity})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Delete removes the cache. Deleting an absent cache succeeds.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}
