package namespace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "data", "active-namespace.json"))
}

func writePointer(t *testing.T, s *Store, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestActiveMissingFile(t *testing.T) {
	s := newTestStore(t)
	if ns, ok := s.Active(); ok || ns != "" {
		t.Errorf("Active() = (%q, %v), want absent", ns, ok)
	}
}

func TestActiveReadsAndTrims(t *testing.T) {
	s := newTestStore(t)
	writePointer(t, s, `{"namespace":"  docs1  ","lastUpdated":"2024-05-01T10:00:00Z"}`)

	ns, ok := s.Active()
	if !ok {
		t.Fatal("expected an active namespace")
	}
	if ns != "docs1" {
		t.Errorf("namespace = %q, want %q", ns, "docs1")
	}

	p, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !p.LastUpdated.Equal(want) {
		t.Errorf("LastUpdated = %s, want %s", p.LastUpdated, want)
	}
}

func TestActiveToleratesOddTimestamps(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Time
	}{
		{"epoch millis", `{"namespace":"docs1","lastUpdated":1700000000000}`, time.UnixMilli(1700000000000).UTC()},
		{"unparseable string", `{"namespace":"docs1","lastUpdated":"last tuesday"}`, time.Time{}},
		{"object", `{"namespace":"docs1","lastUpdated":{"at":1}}`, time.Time{}},
		{"null", `{"namespace":"docs1","lastUpdated":null}`, time.Time{}},
		{"missing", `{"namespace":"docs1"}`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writePointer(t, s, tt.content)
			if ns, ok := s.Active(); !ok || ns != "docs1" {
				t.Fatalf("Active() = (%q, %v), want (docs1, true)", ns, ok)
			}
			p, err := s.Read()
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !p.LastUpdated.Equal(tt.want) {
				t.Errorf("LastUpdated = %s, want %s", p.LastUpdated, tt.want)
			}
		})
	}
}

func TestActiveInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"namespace":`},
		{"blank namespace", `{"namespace":"   "}`},
		{"empty namespace", `{"namespace":""}`},
		{"numeric namespace", `{"namespace":42}`},
		{"missing namespace", `{"lastUpdated":"2024-05-01T10:00:00Z"}`},
		{"null namespace", `{"namespace":null}`},
		{"array", `["docs1"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writePointer(t, s, tt.content)
			if ns, ok := s.Active(); ok {
				t.Errorf("Active() = (%q, true), want absent", ns)
			}
		})
	}
}

func TestSetOverwritesWholesale(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if _, err := s.Set("first"); err != nil {
		t.Fatalf("Set first: %v", err)
	}
	p, err := s.Set("  second ")
	if err != nil {
		t.Fatalf("Set second: %v", err)
	}
	if p.Namespace != "second" {
		t.Errorf("returned namespace = %q, want %q", p.Namespace, "second")
	}

	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Namespace != "second" {
		t.Errorf("namespace = %q, want %q", got.Namespace, "second")
	}
	if !got.LastUpdated.Equal(fixed) {
		t.Errorf("LastUpdated = %s, want %s", got.LastUpdated, fixed)
	}

	// No temp files should be left behind next to the pointer.
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the pointer file, found %d entries", len(entries))
	}
}

func TestSetRejectsBlank(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Set(" \t "); !errors.Is(err, ErrBlankNamespace) {
		t.Errorf("expected ErrBlankNamespace, got %v", err)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on missing file: %v", err)
	}
	if _, err := s.Set("docs1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := s.Active(); ok {
		t.Error("expected no active namespace after Clear")
	}
}
