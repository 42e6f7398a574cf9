package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tally/internal/model"
)

// RelPath is the rules file location inside a project.
const RelPath = "rules/categorization-rules.yaml"

// File is the on-disk shape of the rules file.
type File struct {
	Rules []model.Rule `yaml:"rules"`
}

// LoadFile reads rules from path. A missing file yields no rules.
func LoadFile(path string) ([]model.Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	for i := range f.Rules {
		f.Rules[i].Keywords = ParseKeywords(f.Rules[i].Pattern)
		if f.Rules[i].ID == "" {
			f.Rules[i].ID = fmt.Sprintf("r%03d", i+1)
		}
	}
	return f.Rules, nil
}

// SaveFile writes rules to path, creating its directory.
func SaveFile(path string, rs []model.Rule) error {
	if rs == nil {
		rs = []model.Rule{}
	}
	data, err := yaml.Marshal(File{Rules: rs})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// Source reads rules from a project's rules file on every call, so edits
// made between imports are picked up.
type Source struct {
	path string
}

// NewSource returns a Source for the rules file under repoRoot.
func NewSource(repoRoot string) *Source {
	return &Source{path: filepath.Join(repoRoot, RelPath)}
}

// Path returns the rules file path.
func (s *Source) Path() string { return s.path }

// Rules loads the current rules.
func (s *Source) Rules(ctx context.Context) ([]model.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.path)
}

// Add appends r to the rules file and returns it with its assigned ID.
func (s *Source) Add(r model.Rule) (model.Rule, error) {
	if len(ParseKeywords(r.Pattern)) == 0 {
		return model.Rule{}, errors.New("rule pattern has no keywords")
	}
	if r.Category == "" {
		return model.Rule{}, errors.New("rule category is required")
	}
	rs, err := LoadFile(s.path)
	if err != nil {
		return model.Rule{}, err
	}
	if r.ID == "" {
		r.ID = fmt.Sprintf("r%03d", len(rs)+1)
	}
	r.Keywords = ParseKeywords(r.Pattern)
	rs = append(rs, r)
	if err := SaveFile(s.path, rs); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

// CategoryChecker tests whether a category exists in the chart.
type CategoryChecker interface {
	Exists(name string) bool
}

// UnknownCategories returns the rules whose category is not in the chart.
func UnknownCategories(rs []model.Rule, chart CategoryChecker) []model.Rule {
	var unknown []model.Rule
	for _, r := range rs {
		if !chart.Exists(r.Category) {
			unknown = append(unknown, r)
		}
	}
	return unknown
}
