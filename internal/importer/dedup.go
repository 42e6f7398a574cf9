package importer

import "github.com/cleared-dev/tally/internal/model"

// dedupKey is the natural key of a ledger row. Two distinct transactions
// with the same date, description and amount collapse into one.
type dedupKey struct {
	date        string
	description string
	amount      string
}

func keyOf(t model.Transaction) dedupKey {
	return dedupKey{
		date:        t.ISODate(),
		description: t.Description,
		amount:      t.Amount.StringFixed(2),
	}
}

// Dedup drops candidates already present in existing when skip is true.
// It returns the kept candidates in input order and the number dropped.
func Dedup(candidates, existing []model.Transaction, skip bool) ([]model.Transaction, int) {
	if !skip || len(existing) == 0 {
		return candidates, 0
	}
	seen := make(map[dedupKey]struct{}, len(existing))
	for _, t := range existing {
		seen[keyOf(t)] = struct{}{}
	}
	kept := make([]model.Transaction, 0, len(candidates))
	dups := 0
	for _, c := range candidates {
		if _, ok := seen[keyOf(c)]; ok {
			dups++
			continue
		}
		kept = append(kept, c)
	}
	return kept, dups
}
