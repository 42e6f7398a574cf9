package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/cleared-dev/tally/internal/model"
)

// Dir is the ledger directory relative to the project root.
const Dir = "ledger"

const fileName = "transactions.csv"

type month struct{ year, month int }

func monthOf(t model.Transaction) month {
	return month{t.Date.Year(), int(t.Date.Month())}
}

// Store reads and writes the month files of one project.
type Store struct {
	root string
}

// NewStore returns a Store rooted at the project directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// All returns every stored transaction in month order, file order within
// a month.
func (s *Store) All(ctx context.Context) ([]model.Transaction, error) {
	months, err := s.months()
	if err != nil {
		return nil, err
	}
	var all []model.Transaction
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txns, err := s.readMonth(m)
		if err != nil {
			return nil, err
		}
		all = append(all, txns...)
	}
	return all, nil
}

// Existing returns the transactions of companyID.
func (s *Store) Existing(ctx context.Context, companyID string) ([]model.Transaction, error) {
	return s.filter(ctx, func(t model.Transaction) bool { return t.CompanyID == companyID })
}

// Uncategorized returns the transactions of companyID without a category.
func (s *Store) Uncategorized(ctx context.Context, companyID string) ([]model.Transaction, error) {
	return s.filter(ctx, func(t model.Transaction) bool {
		return t.CompanyID == companyID && !t.IsCategorized()
	})
}

func (s *Store) filter(ctx context.Context, keep func(model.Transaction) bool) ([]model.Transaction, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Transaction
	for _, t := range all {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Insert validates txns together with the rows already in their month
// files and appends them. Nothing is written unless every month passes.
func (s *Store) Insert(ctx context.Context, txns []model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	groups := make(map[month][]model.Transaction)
	var order []month
	for _, t := range txns {
		m := monthOf(t)
		if _, ok := groups[m]; !ok {
			order = append(order, m)
		}
		groups[m] = append(groups[m], t)
	}

	var verrs []ValidationError
	for _, m := range order {
		existing, err := s.readMonth(m)
		if err != nil {
			return err
		}
		verrs = append(verrs, Validate(append(existing, groups[m]...), m.year, m.month)...)
	}
	if len(verrs) > 0 {
		return joinErrors(verrs)
	}

	for _, m := range order {
		if err := s.appendMonth(m, groups[m]); err != nil {
			return err
		}
	}
	return nil
}

// SetCategory assigns category to the transactions with the given IDs and
// rewrites the affected month files.
func (s *Store) SetCategory(ctx context.Context, category string, ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	months, err := s.months()
	if err != nil {
		return err
	}
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return err
		}
		txns, err := s.readMonth(m)
		if err != nil {
			return err
		}
		changed := false
		for i := range txns {
			if want[txns[i].ID] {
				txns[i].Category = category
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := s.writeMonth(m, txns); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(m month) string {
	return filepath.Join(s.root, Dir, fmt.Sprintf("%04d", m.year), fmt.Sprintf("%02d", m.month), fileName)
}

// months lists the month files present on disk in chronological order.
func (s *Store) months() ([]month, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, Dir, "*", "*", fileName))
	if err != nil {
		return nil, fmt.Errorf("listing ledger files: %w", err)
	}
	var months []month
	for _, p := range matches {
		monthDir := filepath.Dir(p)
		y, yerr := strconv.Atoi(filepath.Base(filepath.Dir(monthDir)))
		mo, merr := strconv.Atoi(filepath.Base(monthDir))
		if yerr != nil || merr != nil || mo < 1 || mo > 12 {
			continue
		}
		months = append(months, month{y, mo})
	}
	slices.SortFunc(months, func(a, b month) int {
		if a.year != b.year {
			return a.year - b.year
		}
		return a.month - b.month
	})
	return months, nil
}

func (s *Store) readMonth(m month) ([]model.Transaction, error) {
	path := s.path(m)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}

func (s *Store) appendMonth(m month, txns []model.Transaction) error {
	path := s.path(m)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, txns); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

// writeMonth replaces a month file through a temporary file and rename.
func (s *Store) writeMonth(m month, txns []model.Transaction) error {
	path := s.path(m)
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, txns); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
