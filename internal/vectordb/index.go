// Package vectordb queries the vector index that the upload flow populates.
package vectordb

import (
	"context"
	"errors"
	"math"
)

// ErrNamespaceNotFound is returned when a scoped query targets a namespace
// the backend does not know.
var ErrNamespaceNotFound = errors.New("namespace not found")

// Index is a top-K similarity query endpoint.
type Index interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
}

// NamespaceScoper is implemented by indexes that can hand out a handle bound
// to one namespace. Indexes without it take QueryRequest.Namespace instead.
type NamespaceScoper interface {
	Namespace(name string) (Index, error)
}

// QueryRequest describes one similarity query.
type QueryRequest struct {
	Vector          []float32
	TopK            int
	Namespace       string
	IncludeMetadata bool
}

// QueryResponse holds matches in the order the index ranked them.
type QueryResponse struct {
	Matches []Match
}

// Match is one raw hit. Score is nil when the backend returned no numeric
// score.
type Match struct {
	ID       string
	Score    *float64
	Metadata map[string]any
}

// Metadata keys written by the upload flow.
const (
	MetaText        = "text"
	MetaChunkNumber = "chunk_number"
	MetaNamespace   = "namespace"
)

// Scoped returns a handle bound to namespace. Indexes implementing
// NamespaceScoper are asked for one; any other index gets the namespace set
// on each request.
func Scoped(idx Index, namespace string) (Index, error) {
	if s, ok := idx.(NamespaceScoper); ok {
		return s.Namespace(namespace)
	}
	return namespaced{inner: idx, namespace: namespace}, nil
}

type namespaced struct {
	inner     Index
	namespace string
}

func (n namespaced) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	req.Namespace = n.namespace
	return n.inner.Query(ctx, req)
}

// scoreFrom converts a decoded JSON score into a Match score. Anything other
// than a finite number yields nil.
func scoreFrom(v any) *float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
