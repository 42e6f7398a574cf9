package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/categories"
	"github.com/cleared-dev/tally/internal/commands"
	"github.com/cleared-dev/tally/internal/importlog"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/rules"
)

const chaseFixture = "../../testdata/chase_checking.csv"

// runTally executes the CLI in-process and returns what it wrote to stdout.
func runTally(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--name", "Test Biz", "--no-git")
	require.NoError(t, err)
	return dir
}

func fixture(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(chaseFixture)
	require.NoError(t, err)
	return path
}

func copyToInbox(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(fixture(t))
	require.NoError(t, err)
	dst := filepath.Join(dir, "import", name)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
	return dst
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initProject(t)

	for _, d := range []string{"rules", "categories", "ledger", "logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{".gitignore", rules.RelPath, categories.RelPath} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "file %s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--name", "My Company", "--company-id", "acme", "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "tally.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: My Company")
	assert.Contains(t, contents, "entity_type: sole_proprietor")
	assert.Contains(t, contents, "company_id: acme")
	assert.Contains(t, contents, "auto_commit: false")
}

func TestInit_Categories(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--name", "Test Biz", "--entity-type", "s_corp", "--no-git")
	require.NoError(t, err)

	chart, err := categories.Load(dir)
	require.NoError(t, err)
	assert.True(t, chart.Exists("Software"))
	assert.True(t, chart.Exists("Payroll"))
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "init", dir, "--name", "Again", "--no-git")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runTally(t, "init", t.TempDir(), "--no-git")
	require.Error(t, err)
}

func TestFormats(t *testing.T) {
	out, err := runTally(t, "formats")
	require.NoError(t, err)
	for _, id := range []string{"chase_checking", "capital_one", "amex", "generic"} {
		assert.Contains(t, out, id)
	}

	out, err = runTally(t, "formats", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: chase_checking")
}

func TestImportParse_JSON(t *testing.T) {
	dir := initProject(t)

	out, err := runTally(t, "--repo", dir, "import", "parse", fixture(t), "--json")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "chase_checking", res["detectedBank"])
	assert.Equal(t, float64(7), res["parsedCount"])
	assert.Equal(t, false, res["needsMapping"])
}

func TestImportParse_Table(t *testing.T) {
	dir := initProject(t)

	out, err := runTally(t, "--repo", dir, "import", "parse", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Format: Chase Checking")
	assert.Contains(t, out, "GITHUB *PRO SUBSCRIPTION")
	assert.Contains(t, out, "Net: $4,120.40")
}

func TestImportParse_UnknownFormat(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "import", "parse", fixture(t), "--format", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bank format")
}

func TestImportParse_BadMappingField(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "import", "parse", fixture(t), "--map", "when=Posting Date")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "when"`)
}

func TestImportCommit(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "rules", "add", "--pattern", "github, amazon web services", "--category", "software")
	require.NoError(t, err)

	out, err := runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 7 of 7 transactions (0 duplicates, 2 classified by 1 rules)")

	txns, err := ledger.NewStore(dir).All(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 7)
	categorized := 0
	for _, txn := range txns {
		assert.True(t, strings.HasPrefix(txn.BatchID, "imp-"), txn.BatchID)
		if txn.Category != "" {
			assert.Equal(t, "Software", txn.Category)
			categorized++
		}
	}
	assert.Equal(t, 2, categorized)

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Imported)
	assert.Equal(t, "chase_checking", entries[0].BankFormat)
	assert.Equal(t, "chase_checking.csv", entries[0].FileName)
	assert.Empty(t, entries[0].CommitHash)
}

func TestImportCommit_SecondRunIsAllDuplicates(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)

	out, err := runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 of 7 transactions (7 duplicates")

	txns, err := ledger.NewStore(dir).All(context.Background())
	require.NoError(t, err)
	assert.Len(t, txns, 7)

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestImportCommit_NetCountsOnlyInsertedRows(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)

	next := filepath.Join(t.TempDir(), "february.csv")
	data := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n" +
		"DEBIT,01/03/2025,\"GITHUB *PRO SUBSCRIPTION\",-4.00,ACH_DEBIT,12496.00,,\n" +
		"DEBIT,02/03/2025,\"GITHUB *PRO SUBSCRIPTION\",-10.00,ACH_DEBIT,12486.00,,\n"
	require.NoError(t, os.WriteFile(next, []byte(data), 0o644))

	out, err := runTally(t, "--repo", dir, "import", "commit", next)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 of 2 transactions (1 duplicates")
	assert.Contains(t, out, "net -$10.00")
}

func TestImportCommit_AllowDuplicates(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)

	out, err := runTally(t, "--repo", dir, "import", "commit", fixture(t), "--allow-duplicates")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 7 of 7 transactions (0 duplicates")

	txns, err := ledger.NewStore(dir).All(context.Background())
	require.NoError(t, err)
	assert.Len(t, txns, 14)
}

func TestImportCommit_MovesInboxFile(t *testing.T) {
	dir := initProject(t)
	src := copyToInbox(t, dir, "january.csv")

	_, err := runTally(t, "--repo", dir, "import", "commit", src)
	require.NoError(t, err)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "file should leave the inbox")
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "january.csv"))
	assert.NoError(t, err)
}

func TestImportCommit_KeepLeavesInboxFile(t *testing.T) {
	dir := initProject(t)
	src := copyToInbox(t, dir, "january.csv")

	_, err := runTally(t, "--repo", dir, "import", "commit", src, "--keep")
	require.NoError(t, err)

	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestImportScan(t *testing.T) {
	dir := initProject(t)

	out, err := runTally(t, "--repo", dir, "import", "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "No files in import/")

	copyToInbox(t, dir, "january.csv")
	out, err = runTally(t, "--repo", dir, "import", "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "january.csv")
	assert.Contains(t, out, "chase_checking")
}

func TestImportHistory(t *testing.T) {
	dir := initProject(t)

	out, err := runTally(t, "--repo", dir, "import", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No imports yet")

	_, err = runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)

	out, err = runTally(t, "--repo", dir, "import", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "chase_checking.csv")
	assert.Contains(t, out, "imp-")
}

func TestClassify(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)

	store := ledger.NewStore(dir)
	uncategorized, err := store.Uncategorized(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, uncategorized, 7)

	_, err = runTally(t, "--repo", dir, "rules", "add", "--pattern", "uber eats", "--category", "Meals")
	require.NoError(t, err)

	out, err := runTally(t, "--repo", dir, "classify")
	require.NoError(t, err)
	assert.Contains(t, out, "Classified 1 transactions using 1 rules")
	assert.Contains(t, out, "Meals")

	uncategorized, err = store.Uncategorized(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, uncategorized, 6)

	out, err = runTally(t, "--repo", dir, "classify")
	require.NoError(t, err)
	assert.Contains(t, out, "Classified 0 transactions")
}

func TestRules_AddAndList(t *testing.T) {
	dir := initProject(t)

	out, err := runTally(t, "--repo", dir, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No active rules")

	_, err = runTally(t, "--repo", dir, "rules", "add", "--pattern", "uber", "--category", "Travel")
	require.NoError(t, err)
	_, err = runTally(t, "--repo", dir, "rules", "add", "--pattern", "uber eats", "--category", "Meals", "--priority", "5")
	require.NoError(t, err)
	_, err = runTally(t, "--repo", dir, "rules", "add", "--pattern", "lyft", "--category", "Travel", "--inactive")
	require.NoError(t, err)

	out, err = runTally(t, "--repo", dir, "rules", "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "uber eats"), strings.Index(out, "Travel"), "higher priority rule is listed first")
	assert.NotContains(t, out, "lyft")

	rs, err := rules.NewSource(dir).Rules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rs, 3)
}

func TestRules_AddUnknownCategory(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "rules", "add", "--pattern", "uber", "--category", "Rideshare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "Rideshare"`)
}

func TestRules_Check(t *testing.T) {
	dir := initProject(t)
	_, err := runTally(t, "--repo", dir, "rules", "add", "--pattern", "github", "--category", "Software")
	require.NoError(t, err)

	out, err := runTally(t, "--repo", dir, "rules", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "1 rules OK")

	require.NoError(t, rules.SaveFile(filepath.Join(dir, rules.RelPath), []model.Rule{
		{ID: "r001", Pattern: "github", Category: "Software", IsActive: true},
		{ID: "r002", Pattern: "lunch", Category: "Food", IsActive: true},
	}))
	out, err = runTally(t, "--repo", dir, "rules", "check")
	require.Error(t, err)
	assert.Contains(t, out, `rule r002: unknown category "Food"`)
}

func TestNotAProject(t *testing.T) {
	_, err := runTally(t, "--repo", t.TempDir(), "import", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening project")
}

func TestImportCommit_GitCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out, err := runTally(t, "init", dir, "--name", "Git Biz")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized tally project")

	_, err = runTally(t, "--repo", dir, "import", "commit", fixture(t))
	require.NoError(t, err)

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].CommitHash)
}
