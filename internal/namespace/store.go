// Package namespace reads and writes the pointer naming the document
// collection that searches are scoped to.
package namespace

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBlankNamespace is returned by Set for an empty or whitespace-only name.
var ErrBlankNamespace = errors.New("namespace must not be blank")

// Pointer is the persisted active namespace record.
type Pointer struct {
	Namespace   string    `json:"namespace"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// rawPointer keeps both fields untyped: a non-string namespace must be told
// apart from a missing one, and a timestamp of any shape must not spoil the
// record.
type rawPointer struct {
	Namespace   any `json:"namespace"`
	LastUpdated any `json:"lastUpdated"`
}

// Store is a file-backed active namespace pointer.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a Store for the pointer file at path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the location of the pointer file.
func (s *Store) Path() string { return s.path }

// Active returns the trimmed active namespace. A missing, unreadable or
// malformed file, or a blank or non-string namespace, yields ("", false).
func (s *Store) Active() (string, bool) {
	p, err := s.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("namespace: ignoring pointer %s: %v", s.path, err)
		}
		return "", false
	}
	return p.Namespace, true
}

// Read loads and validates the full pointer record.
func (s *Store) Read() (*Pointer, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var raw rawPointer
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	name, ok := raw.Namespace.(string)
	if !ok {
		return nil, fmt.Errorf("namespace in %s is not a string", s.path)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("namespace in %s: %w", s.path, ErrBlankNamespace)
	}

	return &Pointer{Namespace: name, LastUpdated: parseTimestamp(raw.LastUpdated)}, nil
}

// parseTimestamp reads an RFC 3339 string or a Unix time in milliseconds.
// Anything else yields the zero time.
func parseTimestamp(v any) time.Time {
	switch ts := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t
		}
	case float64:
		if ts > 0 && ts < 1<<53 {
			return time.UnixMilli(int64(ts)).UTC()
		}
	}
	return time.Time{}
}

// Set overwrites the pointer with name. The record is written to a temp
// file and renamed so concurrent readers never observe a partial write.
func (s *Store) Set(name string) (*Pointer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankNamespace
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating namespace directory: %w", err)
	}

	p := &Pointer{Namespace: name, LastUpdated: s.now().UTC()}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling namespace pointer: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".active-namespace-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing namespace pointer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing namespace pointer: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return nil, fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return p, nil
}

// Clear removes the pointer. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}
	return nil
}
