package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// pineconeQuerier is the part of *pinecone.IndexConnection the index uses.
type pineconeQuerier interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
}

// pineconeDialer opens a connection bound to one namespace ("" for the
// default namespace).
type pineconeDialer func(namespace string) (pineconeQuerier, error)

// pineconePool holds one connection per namespace, opened on first use.
type pineconePool struct {
	dial  pineconeDialer
	mu    sync.Mutex
	conns map[string]pineconeQuerier
}

func (p *pineconePool) get(namespace string) (pineconeQuerier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.conns[namespace]; ok {
		return c, nil
	}
	c, err := p.dial(namespace)
	if err != nil {
		return nil, err
	}
	p.conns[namespace] = c
	return c, nil
}

// PineconeIndex queries a Pinecone index through the official SDK. Scoped
// handles share the parent's connection pool.
type PineconeIndex struct {
	pool      *pineconePool
	namespace string
}

// NewPineconeIndex creates an index for the host shown by the Pinecone
// console, with or without a scheme. No connection is made until the first
// query, so a missing API key surfaces as a query error.
func NewPineconeIndex(host, apiKey string) *PineconeIndex {
	host = pineconeHost(host)
	return newPineconeIndex(func(namespace string) (pineconeQuerier, error) {
		pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("create pinecone client: %w", err)
		}
		conn, err := pc.Index(pinecone.NewIndexConnParams{Host: host, Namespace: namespace})
		if err != nil {
			return nil, fmt.Errorf("connect to pinecone index %s: %w", host, err)
		}
		return conn, nil
	})
}

func newPineconeIndex(dial pineconeDialer) *PineconeIndex {
	return &PineconeIndex{pool: &pineconePool{dial: dial, conns: make(map[string]pineconeQuerier)}}
}

func pineconeHost(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

func (p *PineconeIndex) Namespace(name string) (Index, error) {
	return &PineconeIndex{pool: p.pool, namespace: name}, nil
}

func (p *PineconeIndex) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	ns := p.namespace
	if req.Namespace != "" {
		ns = req.Namespace
	}
	conn, err := p.pool.get(ns)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK < 0 {
		topK = 0
	}
	res, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          req.Vector,
		TopK:            uint32(topK),
		IncludeMetadata: req.IncludeMetadata,
	})
	if err != nil {
		if ns != "" && status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("pinecone namespace %q: %w", ns, ErrNamespaceNotFound)
		}
		return nil, fmt.Errorf("pinecone query: %w", err)
	}
	if res == nil {
		return &QueryResponse{}, nil
	}

	out := &QueryResponse{Matches: make([]Match, 0, len(res.Matches))}
	for _, m := range res.Matches {
		if m == nil {
			continue
		}
		match := Match{Score: pineconeScore(m.Score)}
		if v := m.Vector; v != nil {
			match.ID = v.Id
			if v.Metadata != nil {
				match.Metadata = v.Metadata.AsMap()
			}
		}
		out.Matches = append(out.Matches, match)
	}
	return out, nil
}

// Close releases every open connection.
func (p *PineconeIndex) Close() error {
	p.pool.mu.Lock()
	defer p.pool.mu.Unlock()
	var errs []error
	for ns, c := range p.pool.conns {
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		delete(p.pool.conns, ns)
	}
	return errors.Join(errs...)
}

func pineconeScore(s float32) *float64 {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
