package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/rules"
)

// ConfirmOptions controls a commit of parsed transactions.
type ConfirmOptions struct {
	SkipDuplicates bool
	CompanyID      string
	FileName       string
	BankFormat     string
}

// Summary reports the outcome of a commit. Net is the signed sum of the
// inserted transactions only.
type Summary struct {
	BatchID      string          `json:"batchId,omitempty"`
	Imported     int             `json:"imported"`
	Duplicates   int             `json:"duplicates"`
	Total        int             `json:"total"`
	Classified   int             `json:"classified"`
	RulesApplied int             `json:"rulesApplied"`
	Net          decimal.Decimal `json:"net"`
}

// Service commits parsed transactions to a ledger and classifies them.
type Service struct {
	store  LedgerStore
	rules  RuleSource
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a Service. A nil logger discards output.
func NewService(store LedgerStore, rules RuleSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		store:  store,
		rules:  rules,
		logger: logger,
		now:    time.Now,
		newID:  id.NewTransactionID,
	}
}

// ConfirmImport deduplicates txns against the ledger, inserts the rest as
// one batch and classifies them. The steps run in sequence without a
// surrounding transaction: if classification fails the inserted rows stay
// uncategorized, the partial summary is returned with the error, and
// Reclassify can finish the job later.
func (s *Service) ConfirmImport(ctx context.Context, txns []model.Transaction, opts ConfirmOptions) (*Summary, error) {
	sum := &Summary{Total: len(txns)}

	existing, err := s.store.Existing(ctx, opts.CompanyID)
	if err != nil {
		return sum, fmt.Errorf("loading existing transactions: %w", err)
	}
	kept, dups := Dedup(txns, existing, opts.SkipDuplicates)
	sum.Duplicates = dups
	if len(kept) == 0 {
		s.logger.Info("nothing to import", "file", opts.FileName, "duplicates", dups)
		return sum, nil
	}

	now := s.now().UTC()
	sum.BatchID = id.FormatBatchID(now, id.NextBatchSeq(batchIDs(existing), now))
	batch := make([]model.Transaction, len(kept))
	for i, t := range kept {
		if t.ID == "" {
			t.ID = s.newID()
		}
		if opts.CompanyID != "" {
			t.CompanyID = opts.CompanyID
		}
		t.BatchID = sum.BatchID
		t.ImportedAt = now
		batch[i] = t
	}

	if err := s.store.Insert(ctx, batch); err != nil {
		return sum, fmt.Errorf("inserting batch %s: %w", sum.BatchID, err)
	}
	sum.Imported = len(batch)
	sum.Net = Total(batch)
	s.logger.Info("imported batch",
		"batch", sum.BatchID,
		"file", opts.FileName,
		"format", opts.BankFormat,
		"imported", sum.Imported,
		"duplicates", sum.Duplicates,
	)

	res, err := s.classify(ctx, batch)
	sum.Classified = res.Classified
	sum.RulesApplied = res.RulesApplied
	if err != nil {
		return sum, fmt.Errorf("classifying batch %s: %w", sum.BatchID, err)
	}
	return sum, nil
}

// Reclassify runs the rules over every uncategorized transaction of
// companyID. Categorized rows are never touched.
func (s *Service) Reclassify(ctx context.Context, companyID string) (rules.Result, error) {
	txns, err := s.store.Uncategorized(ctx, companyID)
	if err != nil {
		return rules.Result{}, fmt.Errorf("loading uncategorized transactions: %w", err)
	}
	res, err := s.classify(ctx, txns)
	if err != nil {
		return res, fmt.Errorf("reclassifying: %w", err)
	}
	return res, nil
}

func (s *Service) classify(ctx context.Context, txns []model.Transaction) (rules.Result, error) {
	rs, err := s.rules.Rules(ctx)
	if err != nil {
		return rules.Result{}, fmt.Errorf("loading rules: %w", err)
	}
	engine := rules.New(rs)
	if engine.Len() == 0 {
		return rules.Result{}, nil
	}

	res := engine.Apply(txns)
	for _, cat := range res.Categories() {
		if err := s.store.SetCategory(ctx, cat, res.ByCategory[cat]); err != nil {
			return res, fmt.Errorf("setting category %q: %w", cat, err)
		}
	}
	s.logger.Debug("classified transactions", "classified", res.Classified, "rules", res.RulesApplied)
	return res, nil
}

func batchIDs(txns []model.Transaction) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range txns {
		if t.BatchID == "" || seen[t.BatchID] {
			continue
		}
		seen[t.BatchID] = true
		ids = append(ids, t.BatchID)
	}
	return ids
}
