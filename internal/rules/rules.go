// Package rules holds the configured per-query overrides: retrieval tuning
// and canned answers keyed by normalized query text.
package rules

import (
	"strings"

	"github.com/ziadkadry99/ai-tutor/internal/config"
)

// Rule is one override entry. Zero TopK or MinScore leave the default in
// place; a non-empty Answer replaces model generation.
type Rule struct {
	Name     string
	Query    string
	TopK     int
	MinScore float64
	Answer   string
}

// Table looks up rules by normalized query.
type Table struct {
	byQuery map[string]Rule
}

// Normalize lowercases q, collapses whitespace runs to one space and trims.
func Normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// NewTable builds a table. When two rules normalize to the same query the
// later one wins.
func NewTable(rules []Rule) *Table {
	t := &Table{byQuery: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		key := Normalize(r.Query)
		if key == "" {
			continue
		}
		t.byQuery[key] = r
	}
	return t
}

// FromConfig builds a table from the overrides section of the configuration.
func FromConfig(overrides []config.OverrideRule) *Table {
	rs := make([]Rule, 0, len(overrides))
	for _, o := range overrides {
		rs = append(rs, Rule{
			Name:     o.Name,
			Query:    o.Query,
			TopK:     o.TopK,
			MinScore: o.MinScore,
			Answer:   o.Answer,
		})
	}
	return NewTable(rs)
}

// Lookup returns the rule whose normalized query equals the normalized form
// of query. A nil table has no rules.
func (t *Table) Lookup(query string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	r, ok := t.byQuery[Normalize(query)]
	return r, ok
}

// Len returns the number of distinct rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byQuery)
}
