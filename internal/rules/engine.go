// Package rules assigns categories to transactions from user-authored
// keyword rules.
package rules

import (
	"slices"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// ParseKeywords splits a comma-separated pattern into trimmed, lower-cased
// keywords, dropping empty entries.
func ParseKeywords(pattern string) []string {
	var keywords []string
	for _, part := range strings.Split(pattern, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// keywordsOf derives keywords from the pattern when one is set, otherwise
// it normalizes the rule's own keyword list.
func keywordsOf(r model.Rule) []string {
	if strings.TrimSpace(r.Pattern) != "" {
		return ParseKeywords(r.Pattern)
	}
	var keywords []string
	for _, kw := range r.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Engine matches transactions against rules in precedence order.
type Engine struct {
	rules []model.Rule
}

// New builds an engine from active rules that have at least one keyword,
// taken from Pattern or, when Pattern is empty, from Keywords,
// ordered by priority descending. Equal priorities keep their input order.
func New(rs []model.Rule) *Engine {
	var active []model.Rule
	for _, r := range rs {
		if !r.IsActive || strings.TrimSpace(r.Category) == "" {
			continue
		}
		r.Keywords = keywordsOf(r)
		if len(r.Keywords) == 0 {
			continue
		}
		active = append(active, r)
	}
	slices.SortStableFunc(active, func(a, b model.Rule) int {
		return b.Priority - a.Priority
	})
	return &Engine{rules: active}
}

// Rules returns the active rules in precedence order.
func (e *Engine) Rules() []model.Rule {
	return e.rules
}

// Len returns the number of active rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Classify returns the category of the first rule whose keyword appears in
// the transaction's description or payee. Matching is plain substring
// search, so "ups" also matches "startups".
func (e *Engine) Classify(txn model.Transaction) (string, bool) {
	i := e.match(txn)
	if i < 0 {
		return "", false
	}
	return e.rules[i].Category, true
}

// match returns the index of the first matching rule, or -1.
func (e *Engine) match(txn model.Transaction) int {
	text := strings.ToLower(txn.Description + " " + txn.Payee)
	for i, r := range e.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return i
			}
		}
	}
	return -1
}

// Result groups classified transaction IDs by category.
type Result struct {
	ByCategory   map[string][]string
	Classified   int
	RulesApplied int
}

// Categories returns the assigned categories in sorted order.
func (r Result) Categories() []string {
	cats := make([]string, 0, len(r.ByCategory))
	for c := range r.ByCategory {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// Apply classifies every uncategorized transaction. Already categorized
// transactions are skipped, so re-running Apply is a no-op for them.
// RulesApplied counts the distinct rules that matched at least once.
func (e *Engine) Apply(txns []model.Transaction) Result {
	res := Result{ByCategory: make(map[string][]string)}
	used := make(map[int]bool)
	for _, txn := range txns {
		if txn.IsCategorized() {
			continue
		}
		i := e.match(txn)
		if i < 0 {
			continue
		}
		cat := e.rules[i].Category
		res.ByCategory[cat] = append(res.ByCategory[cat], txn.ID)
		res.Classified++
		used[i] = true
	}
	res.RulesApplied = len(used)
	return res
}
