package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/categories"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/gitops"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/rules"
)

type initOptions struct {
	name       string
	entityType string
	companyID  string
	noGit      bool
}

func newInitCommand(a *app) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.repoDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(cmd.Context(), absDir, opts)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally project at %s (%s)\n", absDir, hash)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally project at %s\n", absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.entityType, "entity-type", "sole_proprietor", "entity type")
	cmd.Flags().StringVar(&opts.companyID, "company-id", "", "company scope stamped on imported transactions")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(ctx context.Context, dir string, opts initOptions) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"rules",
		"categories",
		ledger.Dir,
		"logs",
		importer.InboxDir,
		importer.ProcessedDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(opts.name, opts.entityType)
	cfg.Business.CompanyID = opts.companyID
	cfg.Git.AutoCommit = !opts.noGit
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	chart := categories.NewService(categories.DefaultCategories(opts.entityType))
	if err := chart.Save(dir); err != nil {
		return "", fmt.Errorf("writing categories: %w", err)
	}

	if err := rules.SaveFile(filepath.Join(dir, rules.RelPath), nil); err != nil {
		return "", err
	}

	gitignore := ".env\nimport/*.csv\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	for _, d := range []string{importer.InboxDir, ledger.Dir} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return "", fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	if opts.noGit {
		return "", nil
	}

	repo := gitops.Open(dir)
	if err := repo.Init(ctx); err != nil {
		return "", err
	}
	hash, err := repo.CommitAll(ctx, "init: Initialize "+opts.name, gitops.Author{
		Name:  cfg.Git.AuthorName,
		Email: cfg.Git.AuthorEmail,
	})
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
