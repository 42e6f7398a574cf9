// Package importlog keeps an append-only record of committed imports in
// logs/import-log.csv.
package importlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one committed import.
type Entry struct {
	Timestamp  time.Time
	BatchID    string
	FileName   string
	BankFormat string
	Imported   int
	Duplicates int
	Classified int
	CommitHash string
}

// Header is the CSV header of import-log.csv.
const Header = "timestamp,batch_id,file_name,bank_format,imported,duplicates,classified,commit_hash"

// RelPath is the log location relative to the project root.
const RelPath = "logs/import-log.csv"

const (
	numFields     = 8
	colTimestamp  = 0
	colBatchID    = 1
	colFileName   = 2
	colBankFormat = 3
	colImported   = 4
	colDuplicates = 5
	colClassified = 6
	colCommitHash = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colBatchID] = e.BatchID
	row[colFileName] = e.FileName
	row[colBankFormat] = e.BankFormat
	row[colImported] = strconv.Itoa(e.Imported)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colClassified] = strconv.Itoa(e.Classified)
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colImported, colDuplicates, colClassified} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing %s %q: %w", strings.Split(Header, ",")[col], record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp:  ts,
		BatchID:    record[colBatchID],
		FileName:   record[colFileName],
		BankFormat: record[colBankFormat],
		Imported:   counts[0],
		Duplicates: counts[1],
		Classified: counts[2],
		CommitHash: record[colCommitHash],
	}, nil
}

// Append writes entries to <root>/logs/import-log.csv, creating the file
// and header if needed.
func Append(root string, entries ...Entry) error {
	path := filepath.Join(root, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/import-log.csv, oldest first.
// A missing file yields no entries.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, RelPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
