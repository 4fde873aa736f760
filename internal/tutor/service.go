// Package tutor runs one question through the pipeline: admission,
// validation, search, context assembly and answer generation.
package tutor

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/ziadkadry99/ai-tutor/internal/ratelimit"
	"github.com/ziadkadry99/ai-tutor/internal/retrieval"
)

// MaxQueryBytes bounds the accepted query size.
const MaxQueryBytes = 8 << 10

// Searcher finds the passages for a query.
type Searcher interface {
	ParamsFor(query string) retrieval.Params
	Search(ctx context.Context, query string, p retrieval.Params) []retrieval.SearchMatch
}

// Answerer writes the tagged answer.
type Answerer interface {
	Answer(ctx context.Context, query, excerpts string, hasContext bool) string
}

// Response is the result of one question.
type Response struct {
	Results    []retrieval.SearchMatch `json:"results"`
	AIResponse string                  `json:"aiResponse"`
	HasContext bool                    `json:"hasContext"`
}

// Service sequences the pipeline. It holds no per-request state.
type Service struct {
	searcher         Searcher
	answerer         Answerer
	limiter          *ratelimit.Limiter
	checkCredentials func() error
}

// New creates a Service. A nil limiter admits everything; a nil
// checkCredentials skips the credential check.
func New(searcher Searcher, answerer Answerer, limiter *ratelimit.Limiter, checkCredentials func() error) *Service {
	return &Service{
		searcher:         searcher,
		answerer:         answerer,
		limiter:          limiter,
		checkCredentials: checkCredentials,
	}
}

// Admit applies the per-client rate limit.
func (s *Service) Admit(clientID string) error {
	if s.limiter == nil || s.limiter.Allow(clientID) {
		return nil
	}
	log.Printf("tutor: rate limited client %s", clientID)
	return &Error{Kind: KindRateLimit, Message: MsgRateLimited}
}

// Ask admits clientID and answers query.
func (s *Service) Ask(ctx context.Context, clientID, query string) (*Response, error) {
	if err := s.Admit(clientID); err != nil {
		return nil, err
	}
	return s.Answer(ctx, query)
}

// Answer validates query and runs it through search, assembly and
// generation. Upstream failures degrade inside the pipeline; only
// validation, configuration and unexpected failures are returned.
func (s *Service) Answer(ctx context.Context, query string) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tutor: panic while answering: %v\n%s", r, debug.Stack())
			resp = nil
			err = &Error{Kind: KindInternal, Message: MsgInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := s.check(query); err != nil {
		return nil, err
	}

	params := s.searcher.ParamsFor(query)
	matches := s.searcher.Search(ctx, query, params)
	excerpts, hasContext := retrieval.Assemble(matches, params.MinScore)
	log.Printf("tutor: %d passage(s) retrieved (top_k=%d, min_score=%.2f)", len(matches), params.TopK, params.MinScore)

	return &Response{
		Results:    retrieval.FormatResults(matches),
		AIResponse: s.answerer.Answer(ctx, query, excerpts, hasContext),
		HasContext: hasContext,
	}, nil
}

// Search admits clientID and returns the passages for query without
// generating an answer. The query is validated as in Answer.
func (s *Service) Search(ctx context.Context, clientID, query string) ([]retrieval.SearchMatch, error) {
	if err := s.Admit(clientID); err != nil {
		return nil, err
	}
	if err := s.check(query); err != nil {
		return nil, err
	}
	matches := s.searcher.Search(ctx, query, s.searcher.ParamsFor(query))
	return retrieval.FormatResults(matches), nil
}

// check validates query and the configured credentials.
func (s *Service) check(query string) error {
	if strings.TrimSpace(query) == "" {
		return &Error{Kind: KindValidation, Message: MsgQueryRequired}
	}
	if len(query) > MaxQueryBytes {
		return &Error{Kind: KindValidation, Message: MsgQueryTooLong}
	}
	if s.checkCredentials != nil {
		if err := s.checkCredentials(); err != nil {
			log.Printf("tutor: %v", err)
			return &Error{Kind: KindConfiguration, Message: MsgConfiguration, Err: err}
		}
	}
	return nil
}
