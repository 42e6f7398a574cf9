package importer

import (
	"context"

	"github.com/cleared-dev/tally/internal/model"
)

//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go LedgerStore,RuleSource

// LedgerStore persists normalized transactions.
type LedgerStore interface {
	// Existing returns every stored transaction of companyID.
	Existing(ctx context.Context, companyID string) ([]model.Transaction, error)
	Insert(ctx context.Context, txns []model.Transaction) error
	Uncategorized(ctx context.Context, companyID string) ([]model.Transaction, error)
	// SetCategory assigns category to the transactions with the given IDs.
	SetCategory(ctx context.Context, category string, ids []string) error
}

// RuleSource supplies the current classification rules.
type RuleSource interface {
	Rules(ctx context.Context) ([]model.Rule, error)
}
