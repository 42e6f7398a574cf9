package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

func TestInsert_NewMonths(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	err := store.Insert(ctx, []model.Transaction{
		sampleTxn("t1", date(2025, 2, 3), "FEB", "10.00"),
		sampleTxn("t2", date(2025, 1, 3), "JAN", "4.00"),
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "ledger", "2025", "01", "transactions.csv"))
	assert.FileExists(t, filepath.Join(dir, "ledger", "2025", "02", "transactions.csv"))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t2", all[0].ID)
	assert.Equal(t, "t1", all[1].ID)
}

func TestInsert_AppendsWithoutSecondHeader(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []model.Transaction{sampleTxn("t1", date(2025, 1, 3), "A", "1.00")}))
	require.NoError(t, store.Insert(ctx, []model.Transaction{sampleTxn("t2", date(2025, 1, 4), "B", "2.00")}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInsert_ValidationWritesNothing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []model.Transaction{sampleTxn("t1", date(2025, 1, 3), "A", "1.00")}))

	err := store.Insert(ctx, []model.Transaction{
		sampleTxn("t2", date(2025, 2, 3), "OK", "1.00"),
		sampleTxn("t1", date(2025, 1, 5), "DUP ID", "1.00"),
		sampleTxn("t3", date(2025, 1, 6), "NEG", "-1.00"),
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "is negative")

	_, statErr := os.Stat(filepath.Join(dir, "ledger", "2025", "02", "transactions.csv"))
	assert.True(t, os.IsNotExist(statErr))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExistingAndUncategorized(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	other := sampleTxn("t3", date(2025, 1, 5), "OTHER CO", "3.00")
	other.CompanyID = "co-2"
	done := sampleTxn("t2", date(2025, 1, 4), "DONE", "2.00")
	done.Category = "Software"
	require.NoError(t, store.Insert(ctx, []model.Transaction{
		sampleTxn("t1", date(2025, 1, 3), "OPEN", "1.00"),
		done,
		other,
	}))

	existing, err := store.Existing(ctx, "co-1")
	require.NoError(t, err)
	assert.Len(t, existing, 2)

	open, err := store.Uncategorized(ctx, "co-1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "t1", open[0].ID)
}

func TestSetCategory(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []model.Transaction{
		sampleTxn("t1", date(2025, 1, 3), "GITHUB", "4.00"),
		sampleTxn("t2", date(2025, 1, 4), "UBER", "20.00"),
		sampleTxn("t3", date(2025, 2, 4), "AWS", "9.00"),
	}))

	require.NoError(t, store.SetCategory(ctx, "Software", []string{"t1", "t3"}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	cats := map[string]string{}
	for _, txn := range all {
		cats[txn.ID] = txn.Category
	}
	assert.Equal(t, map[string]string{"t1": "Software", "t2": "", "t3": "Software"}, cats)
	assert.NoFileExists(t, filepath.Join(dir, "ledger", "2025", "01", "transactions.csv.tmp"))
}

func TestAll_EmptyAndCancelled(t *testing.T) {
	store := NewStore(t.TempDir())

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Insert(ctx, nil), context.Canceled)
}

func TestAll_IgnoresStrayDirectories(t *testing.T) {
	dir := t.TempDir()
	stray := filepath.Join(dir, "ledger", "notes", "13")
	require.NoError(t, os.MkdirAll(stray, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stray, "transactions.csv"), []byte("junk"), 0o644))

	all, err := NewStore(dir).All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
