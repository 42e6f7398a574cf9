package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const batchPrefix = "imp-"

// NewTransactionID returns a random transaction ID.
func NewTransactionID() string {
	return uuid.NewString()
}

// FormatBatchID returns an import batch ID like "imp-20250115-001".
func FormatBatchID(date time.Time, seq int) string {
	return fmt.Sprintf("%s%s-%03d", batchPrefix, date.Format("20060102"), seq)
}

// ParseBatchID parses "imp-20250115-001" into its date and sequence.
func ParseBatchID(id string) (time.Time, int, error) {
	rest, ok := strings.CutPrefix(id, batchPrefix)
	if !ok {
		return time.Time{}, 0, fmt.Errorf("invalid batch ID format: %q", id)
	}
	day, seqStr, ok := strings.Cut(rest, "-")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("invalid batch ID format: %q", id)
	}

	date, err := time.Parse("20060102", day)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid date in batch ID %q: %w", id, err)
	}

	seq, err := strconv.Atoi(seqStr)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid sequence in batch ID %q: %w", id, err)
	}
	return date, seq, nil
}

// NextBatchSeq returns the next free sequence number for date among
// existing batch IDs. Malformed IDs are ignored.
func NextBatchSeq(existing []string, date time.Time) int {
	want := date.Format("20060102")
	highest := 0
	for _, b := range existing {
		d, seq, err := ParseBatchID(b)
		if err != nil || d.Format("20060102") != want {
			continue
		}
		highest = max(highest, seq)
	}
	return highest + 1
}
