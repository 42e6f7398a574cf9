package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/cleared-dev/tally/internal/categories"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/gitops"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/rules"
)

var (
	_ importer.LedgerStore  = (*ledger.Store)(nil)
	_ importer.RuleSource   = (*rules.Source)(nil)
	_ rules.CategoryChecker = (*categories.Service)(nil)
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	repoDir string
	verbose bool
	logger  *log.Logger
}

// project is an opened tally project directory.
type project struct {
	root string
	cfg  *config.Config
}

func (a *app) open() (*project, error) {
	root, err := filepath.Abs(a.repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadProject(root)
	if err != nil {
		return nil, fmt.Errorf("opening project %s: %w", root, err)
	}
	return &project{root: root, cfg: cfg}, nil
}

func (p *project) service(logger *log.Logger) *importer.Service {
	return importer.NewService(ledger.NewStore(p.root), rules.NewSource(p.root), logger)
}

// commit records the working tree when auto-commit is on. It returns the
// short hash, or "" when nothing was committed.
func (p *project) commit(ctx context.Context, message string) (string, error) {
	if !p.cfg.Git.AutoCommit {
		return "", nil
	}
	repo := gitops.Open(p.root)
	if !repo.IsRepo() {
		return "", nil
	}
	changed, err := repo.HasChanges(ctx)
	if err != nil || !changed {
		return "", err
	}
	return repo.CommitAll(ctx, message, gitops.Author{
		Name:  p.cfg.Git.AuthorName,
		Email: p.cfg.Git.AuthorEmail,
	})
}
