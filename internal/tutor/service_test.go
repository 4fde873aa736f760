package tutor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/ai-tutor/internal/answer"
	"github.com/ziadkadry99/ai-tutor/internal/config"
	"github.com/ziadkadry99/ai-tutor/internal/llm"
	"github.com/ziadkadry99/ai-tutor/internal/ratelimit"
	"github.com/ziadkadry99/ai-tutor/internal/retrieval"
	"github.com/ziadkadry99/ai-tutor/internal/rules"
	"github.com/ziadkadry99/ai-tutor/internal/vectordb"
)

type mockEmbedder struct{ calls int }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}
func (m *mockEmbedder) Dimensions() int { return 2 }
func (m *mockEmbedder) Name() string    { return "mock" }

type mockIndex struct {
	resp  *vectordb.QueryResponse
	calls []vectordb.QueryRequest
}

func (m *mockIndex) Query(_ context.Context, req vectordb.QueryRequest) (*vectordb.QueryResponse, error) {
	m.calls = append(m.calls, req)
	return m.resp, nil
}

type mockProvider struct {
	reply string
	calls int
}

func (m *mockProvider) Name() string { return "mock" }
func (m *mockProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	return &llm.CompletionResponse{Content: m.reply, Model: "mock"}, nil
}

type fixture struct {
	embedder *mockEmbedder
	index    *mockIndex
	provider *mockProvider
	service  *Service
}

func score(v float64) *float64 { return &v }

func newFixture(t *testing.T, limiter *ratelimit.Limiter, creds func() error) *fixture {
	t.Helper()
	f := &fixture{
		embedder: &mockEmbedder{},
		index: &mockIndex{resp: &vectordb.QueryResponse{Matches: []vectordb.Match{
			{ID: "1", Score: score(0.82), Metadata: map[string]any{"text": "The order directs the officer to vacate.", "chunk_number": float64(1)}},
			{ID: "2", Score: score(0.55), Metadata: map[string]any{"text": "Letterhead."}},
		}}},
		provider: &mockProvider{reply: "SOURCE: Document Reference\nBased on the Document Reference: vacate."},
	}
	table := rules.FromConfig(config.DefaultConfig().Overrides)
	searcher := retrieval.NewSearcher(f.embedder, f.index, nil, table, retrieval.DefaultParams)
	f.service = New(searcher, answer.NewGenerator(f.provider, table), limiter, creds)
	return f
}

func TestAnswerGrounded(t *testing.T) {
	f := newFixture(t, nil, nil)
	resp, err := f.service.Answer(context.Background(), "what does the order say")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !resp.HasContext {
		t.Error("expected context")
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected the 0.55 match to be filtered, got %d results", len(resp.Results))
	}
	if !strings.HasPrefix(resp.Results[0].Text, "[Similarity Score: 0.8200]\n") {
		t.Errorf("unexpected result text %q", resp.Results[0].Text)
	}
	if resp.Results[0].ChunkNumber != "1" {
		t.Errorf("chunk number: got %q", resp.Results[0].ChunkNumber)
	}
	if !strings.HasPrefix(resp.AIResponse, "SOURCE: Document Reference\n") {
		t.Errorf("unexpected answer %q", resp.AIResponse)
	}
	if f.provider.calls != 1 {
		t.Errorf("expected one model call, got %d", f.provider.calls)
	}
}

func TestAnswerTriggerPhrase(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.index.resp = &vectordb.QueryResponse{}

	resp, err := f.service.Answer(context.Background(), "Who is asked to do what")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	want := answer.Tagged(answer.SourceDocument, config.DefaultOverrides[0].Answer)
	if resp.AIResponse != want {
		t.Errorf("got %q, want %q", resp.AIResponse, want)
	}
	if f.provider.calls != 0 {
		t.Error("trigger phrase must not call the model")
	}
	if len(f.index.calls) != 1 || f.index.calls[0].TopK != 10 {
		t.Errorf("trigger phrase should widen top_k to 10, got %+v", f.index.calls)
	}
}

func TestAnswerNoContext(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.index.resp = &vectordb.QueryResponse{}

	resp, err := f.service.Answer(context.Background(), "what is the capital of Peru")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.HasContext || len(resp.Results) != 0 {
		t.Errorf("expected no context, got %+v", resp)
	}
	if resp.Results == nil {
		t.Error("results must encode as an empty list, not null")
	}
	if !strings.HasPrefix(resp.AIResponse, answer.SourceNoInfo.Tag()) || !strings.Contains(resp.AIResponse, "what is the capital of Peru") {
		t.Errorf("unexpected answer %q", resp.AIResponse)
	}
}

func TestAnswerValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	for _, q := range []string{"", "   \n\t", strings.Repeat("a", MaxQueryBytes+1)} {
		_, err := f.service.Answer(context.Background(), q)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("query of %d bytes: expected ErrValidation, got %v", len(q), err)
		}
	}
	if f.embedder.calls != 0 || len(f.index.calls) != 0 || f.provider.calls != 0 {
		t.Error("invalid queries must not reach upstream services")
	}
}

func TestAnswerMissingCredentials(t *testing.T) {
	f := newFixture(t, nil, func() error { return config.ErrMissingCredentials })
	_, err := f.service.Answer(context.Background(), "q")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Error("cause should stay inspectable")
	}
	if AsError(err).Message != MsgConfiguration {
		t.Errorf("message: got %q", AsError(err).Message)
	}
	if f.embedder.calls != 0 {
		t.Error("missing credentials must stop before embedding")
	}
}

func TestAsk(t *testing.T) {
	f := newFixture(t, ratelimit.New(2, time.Minute), nil)
	for i := 0; i < 2; i++ {
		if _, err := f.service.Ask(context.Background(), "1.1.1.1", "q"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	_, err := f.service.Ask(context.Background(), "1.1.1.1", "q")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if AsError(err).Kind.HTTPStatus() != http.StatusTooManyRequests {
		t.Errorf("status: got %d", AsError(err).Kind.HTTPStatus())
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t, ratelimit.New(3, time.Minute), nil)
	got, err := f.service.Search(context.Background(), "mcp", "what does the order say")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0].Text, "[Similarity Score: 0.8200]\n") {
		t.Errorf("unexpected results %+v", got)
	}
	if f.provider.calls != 0 {
		t.Error("search must not call the model")
	}

	if _, err := f.service.Search(context.Background(), "mcp", strings.Repeat("a", MaxQueryBytes+1)); AsError(err).Message != MsgQueryTooLong {
		t.Errorf("long query: got %v", err)
	}
	if _, err := f.service.Search(context.Background(), "mcp", " "); AsError(err).Message != MsgQueryRequired {
		t.Errorf("blank query: got %v", err)
	}
	if len(f.index.calls) != 1 {
		t.Errorf("invalid queries reached the index: %d calls", len(f.index.calls))
	}
	if _, err := f.service.Search(context.Background(), "mcp", "q"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestSearchMissingCredentials(t *testing.T) {
	f := newFixture(t, nil, func() error { return config.ErrMissingCredentials })
	_, err := f.service.Search(context.Background(), "mcp", "q")
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("expected ErrConfiguration wrapping the cause, got %v", err)
	}
	if f.embedder.calls != 0 {
		t.Error("missing credentials must stop before embedding")
	}
}

type panickingSearcher struct{}

func (panickingSearcher) ParamsFor(string) retrieval.Params { return retrieval.DefaultParams }
func (panickingSearcher) Search(context.Context, string, retrieval.Params) []retrieval.SearchMatch {
	panic("boom")
}

func TestAnswerRecoversPanic(t *testing.T) {
	s := New(panickingSearcher{}, answer.NewGenerator(nil, nil), nil, nil)
	resp, err := s.Answer(context.Background(), "q")
	if resp != nil {
		t.Error("expected nil response")
	}
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if AsError(err).Message != MsgInternal {
		t.Errorf("message: got %q", AsError(err).Message)
	}
}

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindRateLimit, http.StatusTooManyRequests},
		{KindConfiguration, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.HTTPStatus(); got != tt.want {
			t.Errorf("Kind(%d).HTTPStatus() = %d, want %d", tt.kind, got, tt.want)
		}
	}
	if AsError(errors.New("x")).Kind != KindInternal {
		t.Error("unknown errors should map to internal")
	}
}
