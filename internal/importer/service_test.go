package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mock_importer "github.com/cleared-dev/tally/internal/importer/mocks"
	"github.com/cleared-dev/tally/internal/model"
)

var importTime = time.Date(2025, 2, 1, 14, 30, 0, 0, time.UTC)

var testRules = []model.Rule{
	{ID: "r001", Pattern: "github, aws", Category: "Software", Priority: 1, IsActive: true},
	{ID: "r002", Pattern: "uber", Category: "Meals", Priority: 1, IsActive: true},
	{ID: "r003", Pattern: "uber eats", Category: "Travel", Priority: 5, IsActive: true},
}

func newTestService(store LedgerStore, src RuleSource) *Service {
	s := NewService(store, src, nil)
	s.now = func() time.Time { return importTime }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func candidates() []model.Transaction {
	return []model.Transaction{
		ledgerTxn(3, "GITHUB *PRO SUBSCRIPTION", "4.00"),
		ledgerTxn(6, "UBER EATS ORDER", "32.18"),
		ledgerTxn(10, "ACME CONSULTING INVOICE 1042", "3500.00"),
	}
}

func TestConfirmImport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()

	existing := []model.Transaction{ledgerTxn(10, "ACME CONSULTING INVOICE 1042", "3500.00")}
	existing[0].BatchID = "imp-20250201-001"

	var inserted []model.Transaction
	gomock.InOrder(
		store.EXPECT().Existing(ctx, "co-1").Return(existing, nil),
		store.EXPECT().Insert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, txns []model.Transaction) error {
			inserted = txns
			return nil
		}),
		src.EXPECT().Rules(ctx).Return(testRules, nil),
		store.EXPECT().SetCategory(ctx, "Software", []string{"id-1"}).Return(nil),
		store.EXPECT().SetCategory(ctx, "Travel", []string{"id-2"}).Return(nil),
	)

	sum, err := newTestService(store, src).ConfirmImport(ctx, candidates(), ConfirmOptions{
		SkipDuplicates: true,
		CompanyID:      "co-1",
		FileName:       "chase.csv",
		BankFormat:     "chase_checking",
	})
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		BatchID:      "imp-20250201-002",
		Imported:     2,
		Duplicates:   1,
		Total:        3,
		Classified:   2,
		RulesApplied: 2,
		Net:          sum.Net,
	}, sum)
	assert.Equal(t, "-36.18", sum.Net.StringFixed(2), "net excludes the duplicate")

	require.Len(t, inserted, 2)
	for _, txn := range inserted {
		assert.Equal(t, "co-1", txn.CompanyID)
		assert.Equal(t, "imp-20250201-002", txn.BatchID)
		assert.Equal(t, importTime, txn.ImportedAt)
		assert.False(t, txn.IsCategorized())
	}
	assert.Equal(t, "id-1", inserted[0].ID)
}

func TestConfirmImport_SecondRunIsAllDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()

	store.EXPECT().Existing(ctx, "co-1").Return(candidates(), nil)

	sum, err := newTestService(store, src).ConfirmImport(ctx, candidates(), ConfirmOptions{
		SkipDuplicates: true,
		CompanyID:      "co-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Imported)
	assert.Equal(t, sum.Total, sum.Duplicates)
	assert.Empty(t, sum.BatchID)
}

func TestConfirmImport_DuplicatesAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()

	store.EXPECT().Existing(ctx, "co-1").Return(candidates(), nil)
	store.EXPECT().Insert(ctx, gomock.Len(3)).Return(nil)
	src.EXPECT().Rules(ctx).Return(nil, nil)

	sum, err := newTestService(store, src).ConfirmImport(ctx, candidates(), ConfirmOptions{CompanyID: "co-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Imported)
	assert.Equal(t, 0, sum.Duplicates)
	assert.Equal(t, 0, sum.Classified)
	assert.Equal(t, "imp-20250201-001", sum.BatchID)
}

func TestConfirmImport_InsertFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()
	boom := errors.New("disk full")

	store.EXPECT().Existing(ctx, "").Return(nil, nil)
	store.EXPECT().Insert(ctx, gomock.Any()).Return(boom)

	sum, err := newTestService(store, src).ConfirmImport(ctx, candidates(), ConfirmOptions{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, sum.Imported)
	assert.Equal(t, 3, sum.Total)
}

func TestConfirmImport_ClassificationFailureKeepsInsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()
	boom := errors.New("write failed")

	store.EXPECT().Existing(ctx, "").Return(nil, nil)
	store.EXPECT().Insert(ctx, gomock.Any()).Return(nil)
	src.EXPECT().Rules(ctx).Return(testRules, nil)
	store.EXPECT().SetCategory(ctx, "Software", gomock.Any()).Return(boom)

	sum, err := newTestService(store, src).ConfirmImport(ctx, candidates(), ConfirmOptions{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, sum.Imported)
	assert.NotEmpty(t, sum.BatchID)
}

func TestConfirmImport_ExistingFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()
	boom := errors.New("unreachable")

	store.EXPECT().Existing(ctx, "co-1").Return(nil, boom)

	_, err := newTestService(store, src).ConfirmImport(ctx, candidates(), ConfirmOptions{CompanyID: "co-1"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "loading existing transactions")
}

func TestReclassify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_importer.NewMockLedgerStore(ctrl)
	src := mock_importer.NewMockRuleSource(ctrl)
	ctx := context.Background()

	pending := candidates()
	for i := range pending {
		pending[i].ID = fmt.Sprintf("t%d", i+1)
	}

	store.EXPECT().Uncategorized(ctx, "co-1").Return(pending, nil)
	src.EXPECT().Rules(ctx).Return(testRules, nil)
	store.EXPECT().SetCategory(ctx, "Software", []string{"t1"}).Return(nil)
	store.EXPECT().SetCategory(ctx, "Travel", []string{"t2"}).Return(nil)

	res, err := newTestService(store, src).Reclassify(ctx, "co-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Classified)
	assert.Equal(t, 2, res.RulesApplied)
	assert.Equal(t, []string{"Software", "Travel"}, res.Categories())
}
