// Package answer writes the provenance-tagged reply to a question, either
// from a rule, a fixed refusal, or one grounded model call.
package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ziadkadry99/ai-tutor/internal/llm"
	"github.com/ziadkadry99/ai-tutor/internal/rules"
)

// Generator produces answers. The returned text always starts with a tag
// line naming one of Sources.
type Generator struct {
	provider    llm.Provider
	rules       *rules.Table
	temperature float64
	maxTokens   int
}

// NewGenerator creates a Generator. table may be nil.
func NewGenerator(provider llm.Provider, table *rules.Table) *Generator {
	return &Generator{
		provider:    provider,
		rules:       table,
		temperature: 0.2,
		maxTokens:   1024,
	}
}

// Answer returns the tagged answer to query. excerpts is the assembled
// context block and is ignored unless hasContext is set. Failures are
// reported inside the returned text, never as an error.
func (g *Generator) Answer(ctx context.Context, query, excerpts string, hasContext bool) string {
	if r, ok := g.rules.Lookup(query); ok && r.Answer != "" {
		log.Printf("answer: rule %q answered without a model call", r.Name)
		return Tagged(SourceDocument, r.Answer)
	}

	if !hasContext {
		return Tagged(SourceNoInfo, NoInfo(query))
	}

	if g.provider == nil {
		return Tagged(SourceError, fmt.Sprintf(callFailureTemplate, "no generation provider configured"))
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: buildSystemPrompt(query)},
			{Role: llm.RoleUser, Content: buildUserPrompt(query, excerpts)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		log.Printf("answer: generation with %s failed: %v", g.provider.Name(), err)
		return Tagged(SourceError, fmt.Sprintf(callFailureTemplate, err.Error()))
	}

	logUsage(g.provider.Name(), resp)

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return Tagged(SourceError, emptyReplyMessage)
	}

	src, body, ok := Parse(reply)
	if !ok {
		log.Printf("answer: reply from %s carried no provenance tag: %.200q", g.provider.Name(), reply)
		return Tagged(SourceError, emptyReplyMessage)
	}
	if body == "" {
		return Tagged(SourceError, emptyReplyMessage)
	}
	return Tagged(src, body)
}

func logUsage(provider string, resp *llm.CompletionResponse) {
	in, out := resp.InputTokens, resp.OutputTokens
	if in == 0 && out == 0 {
		out = llm.EstimateTokens(resp.Content)
	}
	log.Printf("answer: %s/%s used %d input + %d output tokens (~$%.5f)",
		provider, resp.Model, in, out, llm.EstimateCost(resp.Model, in, out))
}
