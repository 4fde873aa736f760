package vectordb

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	chromem "github.com/philippgille/chromem-go"
)

func TestQdrantQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/documents/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "qd-key" {
			t.Errorf("missing api-key header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["limit"] != float64(10) {
			t.Errorf("limit: got %v", body["limit"])
		}
		filter, ok := body["filter"].(map[string]any)
		if !ok {
			t.Fatalf("expected namespace filter, got %v", body)
		}
		must := filter["must"].([]any)[0].(map[string]any)
		if must["key"] != MetaNamespace || must["match"].(map[string]any)["value"] != "docs1" {
			t.Errorf("unexpected filter %v", must)
		}
		w.Write([]byte(`{"result": [
			{"id": 42, "score": 0.7, "payload": {"text": "hit", "chunk_number": "2"}},
			{"id": "uuid-1", "score": null, "payload": {"text": "no score"}}
		], "status": "ok"}`))
	}))
	defer srv.Close()

	idx := NewQdrantIndex(srv.URL, "documents", "qd-key")
	scoped, err := Scoped(idx, "docs1")
	if err != nil {
		t.Fatalf("Scoped: %v", err)
	}
	resp, err := scoped.Query(context.Background(), QueryRequest{Vector: []float32{1}, TopK: 10, IncludeMetadata: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(resp.Matches))
	}
	if resp.Matches[0].ID != "42" || resp.Matches[1].ID != "uuid-1" {
		t.Errorf("ids: got %q, %q", resp.Matches[0].ID, resp.Matches[1].ID)
	}
	if resp.Matches[1].Score != nil {
		t.Errorf("null score should decode to nil")
	}
}

func TestQdrantUnscopedHasNoFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["filter"]; ok {
			t.Errorf("unscoped search must not filter, got %v", body["filter"])
		}
		w.Write([]byte(`{"result": []}`))
	}))
	defer srv.Close()

	resp, err := NewQdrantIndex(srv.URL, "documents", "").Query(context.Background(), QueryRequest{TopK: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(resp.Matches))
	}
}

func newTestChromem(t *testing.T) *chromem.DB {
	t.Helper()
	ctx := context.Background()
	db := chromem.NewDB()

	docs1, err := db.CreateCollection("docs1", nil, nil)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	for _, d := range []chromem.Document{
		{ID: "1", Content: "exact", Embedding: []float32{1, 0}, Metadata: map[string]string{"chunk_number": "1"}},
		{ID: "2", Content: "close", Embedding: []float32{0.6, 0.8}, Metadata: map[string]string{"chunk_number": "2"}},
		{ID: "3", Content: "orthogonal", Embedding: []float32{0, 1}},
	} {
		if err := docs1.AddDocument(ctx, d); err != nil {
			t.Fatalf("add document: %v", err)
		}
	}

	def, err := db.CreateCollection("default", nil, nil)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if err := def.AddDocument(ctx, chromem.Document{ID: "d", Content: "fallback", Embedding: []float32{1, 0}}); err != nil {
		t.Fatalf("add document: %v", err)
	}
	return db
}

func TestChromemScopedQuery(t *testing.T) {
	idx := NewChromemIndex(newTestChromem(t), "default", nil)

	scoped, err := Scoped(idx, "docs1")
	if err != nil {
		t.Fatalf("Scoped: %v", err)
	}
	resp, err := scoped.Query(context.Background(), QueryRequest{Vector: []float32{1, 0}, TopK: 10, IncludeMetadata: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	// TopK is clamped to the collection size.
	if len(resp.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(resp.Matches))
	}
	first := resp.Matches[0]
	if first.Metadata[MetaText] != "exact" || first.Metadata[MetaChunkNumber] != "1" {
		t.Errorf("unexpected first match %+v", first)
	}
	if first.Score == nil || math.Abs(*first.Score-1) > 1e-5 {
		t.Errorf("expected similarity 1, got %v", first.Score)
	}
	if s := resp.Matches[1].Score; s == nil || math.Abs(*s-0.6) > 1e-5 {
		t.Errorf("expected similarity 0.6, got %v", s)
	}
}

func TestChromemUnknownNamespace(t *testing.T) {
	idx := NewChromemIndex(newTestChromem(t), "default", nil)
	if _, err := idx.Namespace("missing"); !errors.Is(err, ErrNamespaceNotFound) {
		t.Errorf("expected ErrNamespaceNotFound, got %v", err)
	}

	resp, err := idx.Query(context.Background(), QueryRequest{Vector: []float32{1, 0}, TopK: 5, IncludeMetadata: true})
	if err != nil {
		t.Fatalf("unscoped Query: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].Metadata[MetaText] != "fallback" {
		t.Errorf("unexpected unscoped matches %+v", resp.Matches)
	}
}

func TestLoadChromemMissingExport(t *testing.T) {
	db, err := LoadChromem(t.TempDir())
	if err != nil {
		t.Fatalf("LoadChromem: %v", err)
	}
	idx := NewChromemIndex(db, "default", nil)
	if _, err := idx.Query(context.Background(), QueryRequest{TopK: 1}); !errors.Is(err, ErrNamespaceNotFound) {
		t.Errorf("expected ErrNamespaceNotFound for empty db, got %v", err)
	}
}
