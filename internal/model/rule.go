package model

// Rule maps keywords found in a transaction's text to a category.
// Pattern is the user-authored, comma-separated keyword list; Keywords is
// its parsed, lower-cased form.
type Rule struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Keywords []string `json:"-" yaml:"-"`
	Category string   `json:"category" yaml:"category"`
	Priority int      `json:"priority" yaml:"priority"`
	IsActive bool     `json:"isActive" yaml:"is_active"`
}
