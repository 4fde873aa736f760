// Package retrieval finds the indexed passages relevant to a question and
// formats them for the answer generator.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/ziadkadry99/ai-tutor/internal/embeddings"
	"github.com/ziadkadry99/ai-tutor/internal/rules"
	"github.com/ziadkadry99/ai-tutor/internal/vectordb"
)

// DefaultParams are used when neither configuration nor a rule says otherwise.
var DefaultParams = Params{TopK: 5, MinScore: 0.6}

// Params tunes one search.
type Params struct {
	TopK     int
	MinScore float64
}

// SearchMatch is a passage that passed the score filter.
type SearchMatch struct {
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	ChunkNumber string  `json:"chunkNumber"`
}

// NoChunkNumber stands in for a missing chunk_number.
const NoChunkNumber = "N/A"

// NamespaceSource reports the active namespace, if any.
type NamespaceSource interface {
	Active() (string, bool)
}

// Searcher embeds a query and runs it against the vector index, preferring
// the active namespace.
type Searcher struct {
	embedder   embeddings.Embedder
	index      vectordb.Index
	namespaces NamespaceSource
	rules      *rules.Table
	defaults   Params
}

// NewSearcher creates a Searcher. namespaces and table may be nil. A zero
// Params means DefaultParams; otherwise a non-positive TopK or a negative
// MinScore is taken from DefaultParams, and a MinScore of 0 keeps every
// scored match.
func NewSearcher(embedder embeddings.Embedder, index vectordb.Index, namespaces NamespaceSource, table *rules.Table, defaults Params) *Searcher {
	if defaults == (Params{}) {
		defaults = DefaultParams
	}
	if defaults.TopK <= 0 {
		defaults.TopK = DefaultParams.TopK
	}
	if defaults.MinScore < 0 {
		defaults.MinScore = DefaultParams.MinScore
	}
	return &Searcher{
		embedder:   embedder,
		index:      index,
		namespaces: namespaces,
		rules:      table,
		defaults:   defaults,
	}
}

// ParamsFor returns the search parameters for query: the defaults, with any
// non-zero tuning from a matching rule applied on top.
func (s *Searcher) ParamsFor(query string) Params {
	p := s.defaults
	if r, ok := s.rules.Lookup(query); ok {
		if r.TopK > 0 {
			p.TopK = r.TopK
		}
		if r.MinScore > 0 {
			p.MinScore = r.MinScore
		}
		log.Printf("retrieval: rule %q applied (top_k=%d, min_score=%.2f)", r.Name, p.TopK, p.MinScore)
	}
	return p
}

// Search returns the matches scoring at least p.MinScore, in index order.
// Failures are logged and yield an empty result.
func (s *Searcher) Search(ctx context.Context, query string, p Params) []SearchMatch {
	matches := []SearchMatch{}

	vec, err := embeddings.EmbedQuery(ctx, s.embedder, query)
	if err != nil {
		log.Printf("retrieval: embedding query: %v", err)
		return matches
	}

	resp := s.query(ctx, vectordb.QueryRequest{
		Vector:          vec,
		TopK:            p.TopK,
		IncludeMetadata: true,
	})
	if resp == nil {
		return matches
	}

	for _, m := range resp.Matches {
		if m.Score == nil || math.IsNaN(*m.Score) || *m.Score < p.MinScore {
			continue
		}
		matches = append(matches, SearchMatch{
			Text:        metaText(m.Metadata),
			Score:       *m.Score,
			ChunkNumber: metaChunkNumber(m.Metadata),
		})
	}
	return matches
}

// query tries the active namespace first and falls back to a single
// unscoped query when the scoped one fails. A nil response means nothing
// could be retrieved.
func (s *Searcher) query(ctx context.Context, req vectordb.QueryRequest) *vectordb.QueryResponse {
	if ns, ok := s.activeNamespace(); ok {
		resp, err := s.scopedQuery(ctx, ns, req)
		if err == nil {
			return resp
		}
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
			log.Printf("retrieval: scoped query for namespace %q abandoned: %v", ns, err)
			return nil
		case errors.Is(err, vectordb.ErrNamespaceNotFound):
			log.Printf("retrieval: namespace %q not available, querying unscoped", ns)
		default:
			log.Printf("retrieval: unexpected scoped query failure for namespace %q, querying unscoped: %v", ns, err)
		}
	}

	resp, err := s.index.Query(ctx, req)
	if err != nil {
		log.Printf("retrieval: query failed: %v", err)
		return nil
	}
	return resp
}

func (s *Searcher) scopedQuery(ctx context.Context, ns string, req vectordb.QueryRequest) (*vectordb.QueryResponse, error) {
	scoped, err := vectordb.Scoped(s.index, ns)
	if err != nil {
		return nil, err
	}
	return scoped.Query(ctx, req)
}

func (s *Searcher) activeNamespace() (string, bool) {
	if s.namespaces == nil {
		return "", false
	}
	return s.namespaces.Active()
}

func metaText(md map[string]any) string {
	switch v := md[vectordb.MetaText].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func metaChunkNumber(md map[string]any) string {
	switch v := md[vectordb.MetaChunkNumber].(type) {
	case nil:
		return NoChunkNumber
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
