package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/tally/internal/bankformat"
)

// RawRow maps a header name to the cell value of one CSV line.
type RawRow map[string]string

// tokenizer streams records from a bank CSV export.
type tokenizer struct {
	cr      *csv.Reader
	headers []string
}

func newTokenizer(r io.Reader) *tokenizer {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return &tokenizer{cr: cr}
}

// header reads the first non-blank record as the header row.
func (t *tokenizer) header() ([]string, error) {
	for {
		rec, err := t.cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		if blank(rec) {
			continue
		}
		headers := make([]string, len(rec))
		for i, h := range rec {
			headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		t.headers = headers
		return headers, nil
	}
}

// next returns the next non-blank data row and its source line.
// A *csv.ParseError describes a malformed line; reading can continue.
func (t *tokenizer) next() (RawRow, int, error) {
	for {
		rec, err := t.cr.Read()
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, perr.StartLine, err
			}
			return nil, 0, err
		}
		if blank(rec) {
			continue
		}
		line, _ := t.cr.FieldPos(0)
		return t.row(rec), line, nil
	}
}

// row keys rec by header. Headers that repeat, ignoring case, keep the
// value of their first column.
func (t *tokenizer) row(rec []string) RawRow {
	row := make(RawRow, len(t.headers))
	seen := make(map[string]bool, len(t.headers))
	for i, h := range t.headers {
		key := bankformat.NormalizeHeader(h)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if i < len(rec) {
			row[h] = rec[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
