package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/ai-tutor/internal/progress"
	"github.com/ziadkadry99/ai-tutor/internal/retrieval"
	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

type stubSearcher struct{}

func (stubSearcher) ParamsFor(string) retrieval.Params { return retrieval.DefaultParams }

func (stubSearcher) Search(_ context.Context, query string, _ retrieval.Params) []retrieval.SearchMatch {
	if strings.Contains(query, "quarter") {
		return []retrieval.SearchMatch{{Text: "The quarter is allotted.", Score: 0.8, ChunkNumber: "1"}}
	}
	return nil
}

type stubAnswerer struct{}

func (stubAnswerer) Answer(_ context.Context, _, _ string, hasContext bool) string {
	if hasContext {
		return "SOURCE: Document Reference\ngrounded"
	}
	return "SOURCE: GENERATED - NO RELEVANT INFORMATION\nnothing"
}

func TestReadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	content := "# comments are skipped\nwho gets the quarter\n\n   \n  what is the date  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := readQuestions(path)
	if err != nil {
		t.Fatalf("readQuestions: %v", err)
	}
	want := []string{"who gets the quarter", "what is the date"}
	if len(got) != len(want) {
		t.Fatalf("got %d questions, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("question %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadQuestionsMissingFile(t *testing.T) {
	if _, err := readQuestions(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAnswerAll(t *testing.T) {
	svc := tutor.New(stubSearcher{}, stubAnswerer{}, nil, nil)
	questions := []string{"who gets the quarter", "what is the weather", strings.Repeat("x", tutor.MaxQueryBytes+1)}

	var out, logs bytes.Buffer
	counts, err := answerAll(context.Background(), svc, questions, &out, progress.NewCIReporter(&logs))
	if err != nil {
		t.Fatalf("answerAll: %v", err)
	}

	if counts["Document Reference"] != 1 {
		t.Errorf("document count = %d, want 1", counts["Document Reference"])
	}
	if counts["GENERATED - NO RELEVANT INFORMATION"] != 1 {
		t.Errorf("no-info count = %d, want 1", counts["GENERATED - NO RELEVANT INFORMATION"])
	}
	if counts[""] != 1 {
		t.Errorf("rejected count = %d, want 1", counts[""])
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 JSON lines, got %d", len(lines))
	}
	var first batchRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decoding first line: %v", err)
	}
	if first.Result == nil || !first.Result.HasContext || len(first.Result.Results) != 1 {
		t.Errorf("unexpected first record %+v", first)
	}
	var last batchRecord
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("decoding last line: %v", err)
	}
	if last.Error != tutor.MsgQueryTooLong || last.Result != nil {
		t.Errorf("expected too-long rejection, got %+v", last)
	}

	if !strings.Contains(logs.String(), "[3/3]") {
		t.Errorf("expected progress for every question, got %q", logs.String())
	}
}
