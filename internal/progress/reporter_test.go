package progress

import (
	"bytes"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter(&buf)
	r.Start(2)
	r.Update(1, "first question")
	r.Update(2, "second question")
	r.Finish()

	want := "Answering 2 question(s)\n[1/2] first question\n[2/2] second question\nBatch complete\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestTerminalReporterWithoutStart(t *testing.T) {
	// Update and Finish before Start must not panic.
	r := &TerminalReporter{}
	r.Update(1, "ignored")
	r.Finish()
}
