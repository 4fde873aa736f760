package rules

import (
	"testing"

	"github.com/ziadkadry99/ai-tutor/internal/config"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Who is asked to do what", "who is asked to do what"},
		{"  who   is\tasked\nto do   WHAT  ", "who is asked to do what"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	table := NewTable([]Rule{
		{Name: "a", Query: "What is Due", TopK: 3},
		{Name: "blank", Query: "   "},
	})
	if table.Len() != 1 {
		t.Fatalf("blank rule should be skipped, got %d rules", table.Len())
	}

	r, ok := table.Lookup("  what IS due ")
	if !ok || r.Name != "a" {
		t.Errorf("expected rule a, got %+v ok=%v", r, ok)
	}

	// Exact match only, no prefix or substring matching.
	if _, ok := table.Lookup("what is due tomorrow"); ok {
		t.Error("lookup must not match a longer query")
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if _, ok := table.Lookup("anything"); ok {
		t.Error("nil table must not match")
	}
}

func TestFromConfigDefaults(t *testing.T) {
	table := FromConfig(config.DefaultConfig().Overrides)
	r, ok := table.Lookup("Who is asked to do what")
	if !ok {
		t.Fatal("default trigger phrase rule missing")
	}
	if r.TopK != 10 || r.MinScore != 0.5 {
		t.Errorf("unexpected tuning top_k=%d min_score=%f", r.TopK, r.MinScore)
	}
	if r.Answer == "" {
		t.Error("default rule should carry a canned answer")
	}
}
