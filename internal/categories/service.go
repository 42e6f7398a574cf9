// Package categories manages the chart of categories that classification
// rules assign to transactions.
package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// RelPath is the chart location relative to the project root.
const RelPath = "categories/categories.csv"

// Service provides in-memory lookup over the chart of categories.
// Names are compared case-insensitively.
type Service struct {
	cats   []model.Category
	byName map[string]model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(cats []model.Category) *Service {
	byName := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byName[strings.ToLower(c.Name)] = c
	}
	return &Service{cats: cats, byName: byName}
}

// Load reads categories/categories.csv from a project root.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, RelPath)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories in chart order.
func (s *Service) All() []model.Category {
	return s.cats
}

// Get returns a category by name.
func (s *Service) Get(name string) (model.Category, bool) {
	c, ok := s.byName[strings.ToLower(name)]
	return c, ok
}

// Exists reports whether a category name exists.
func (s *Service) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// ByType returns the categories of the given type.
func (s *Service) ByType(t model.TxnType) []model.Category {
	var result []model.Category
	for _, c := range s.cats {
		if c.Type == t {
			result = append(result, c)
		}
	}
	return result
}

// Save writes the chart to categories/categories.csv under root.
func (s *Service) Save(root string) error {
	path := filepath.Join(root, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.cats); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
