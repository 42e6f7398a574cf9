package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/bankformat"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/importlog"
)

// parseFlags are shared by import parse and import commit.
type parseFlags struct {
	format  string
	mapping map[string]string
}

func (f *parseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "bank format id (default: detect, or import.bank_format)")
	cmd.Flags().StringToStringVar(&f.mapping, "map", nil, "assign a header to a field, e.g. --map date=When")
}

func (f *parseFlags) options(p *project) (importer.Options, error) {
	opts := importer.Options{
		BankFormat: f.format,
		CompanyID:  p.cfg.Business.CompanyID,
	}
	if opts.BankFormat == "" {
		opts.BankFormat = p.cfg.Import.BankFormat
	}
	if len(f.mapping) > 0 {
		opts.Mapping = make(map[bankformat.Field]string, len(f.mapping))
		for name, header := range f.mapping {
			field, ok := bankformat.ParseField(name)
			if !ok {
				return opts, fmt.Errorf("unknown field %q in --map", name)
			}
			opts.Mapping[field] = header
		}
	}
	return opts, nil
}

func newImportCommand(a *app) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank CSV exports",
	}
	importCmd.AddCommand(
		newImportParseCommand(a),
		newImportCommitCommand(a),
		newImportScanCommand(a),
		newImportHistoryCommand(a),
	)
	return importCmd
}

func newImportParseCommand(a *app) *cobra.Command {
	var pf parseFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a bank CSV and show what would be imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			opts, err := pf.options(p)
			if err != nil {
				return err
			}
			res, err := parseFile(cmd.Context(), a, args[0], opts)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			printParseResult(cmd.OutOrStdout(), res, p.cfg.Currency)
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full parse result as JSON")
	return cmd
}

func newImportCommitCommand(a *app) *cobra.Command {
	var pf parseFlags
	var allowDuplicates, keep bool

	cmd := &cobra.Command{
		Use:   "commit <file>",
		Short: "Import a bank CSV into the ledger and classify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			opts, err := pf.options(p)
			if err != nil {
				return err
			}
			skip := p.cfg.Import.SkipDuplicates && !allowDuplicates
			return runImportCommit(cmd, a, p, args[0], opts, skip, keep)
		},
	}

	pf.register(cmd)
	cmd.Flags().BoolVar(&allowDuplicates, "allow-duplicates", false, "import rows that match existing transactions")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave the file in import/ after a successful import")
	return cmd
}

func runImportCommit(cmd *cobra.Command, a *app, p *project, path string, opts importer.Options, skip, keep bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	res, err := parseFile(ctx, a, path, opts)
	if err != nil {
		return err
	}
	if res.NeedsMapping && len(opts.Mapping) == 0 {
		a.logger.Warn("format not recognized; using generic column names", "file", filepath.Base(path))
	}
	for _, re := range res.Errors {
		a.logger.Warn("skipped row", "row", re.Row, "reason", re.Reason)
	}

	sum, err := p.service(a.logger).ConfirmImport(ctx, res.Transactions, importer.ConfirmOptions{
		SkipDuplicates: skip,
		CompanyID:      p.cfg.Business.CompanyID,
		FileName:       filepath.Base(path),
		BankFormat:     res.DetectedBank,
	})
	if err != nil {
		if sum != nil && sum.Imported > 0 {
			fmt.Fprintf(out, "Imported %d transactions in %s; classification incomplete, run 'tally classify'\n", sum.Imported, sum.BatchID)
		}
		return err
	}

	fmt.Fprintf(out, "Imported %d of %d transactions (%d duplicates, %d classified by %d rules)\n",
		sum.Imported, sum.Total, sum.Duplicates, sum.Classified, sum.RulesApplied)
	if sum.Imported == 0 {
		return nil
	}
	fmt.Fprintf(out, "Batch %s, net %s\n", sum.BatchID, formatMoney(sum.Net, p.cfg.Currency))

	if !keep && isInInbox(p.root, path) {
		if _, err := importer.MarkProcessed(p.root, filepath.Base(path)); err != nil {
			a.logger.Warn("could not move file to processed", "err", err)
		}
	}

	hash, err := p.commit(ctx, fmt.Sprintf("import: %s (%s, %d transactions)", filepath.Base(path), sum.BatchID, sum.Imported))
	if err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	entry := importlog.Entry{
		Timestamp:  time.Now(),
		BatchID:    sum.BatchID,
		FileName:   filepath.Base(path),
		BankFormat: res.DetectedBank,
		Imported:   sum.Imported,
		Duplicates: sum.Duplicates,
		Classified: sum.Classified,
		CommitHash: hash,
	}
	if err := importlog.Append(p.root, entry); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write import log: %v\n", err)
	}
	return nil
}

func newImportScanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List bank CSVs waiting in import/ with their detected format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			files, err := importer.Scan(p.root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files in import/")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tFORMAT\tROWS\tERRORS")
			for _, f := range files {
				res, err := parseFile(cmd.Context(), a, f.Path, importer.Options{BankFormat: p.cfg.Import.BankFormat})
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t%v\n", f.Name, err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", f.Name, res.DetectedBank, res.TotalRows, len(res.Errors))
			}
			return tw.Flush()
		},
	}
}

func newImportHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show committed imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			entries, err := importlog.Read(p.root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No imports yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BATCH\tDATE\tFILE\tFORMAT\tIMPORTED\tDUPLICATES\tCLASSIFIED\tCOMMIT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					e.BatchID, e.Timestamp.Local().Format("2006-01-02 15:04"), e.FileName, e.BankFormat,
					e.Imported, e.Duplicates, e.Classified, e.CommitHash)
			}
			return tw.Flush()
		},
	}
}

func parseFile(ctx context.Context, a *app, path string, opts importer.Options) (*importer.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := importer.NewPipeline(bankformat.Default(), a.logger).Parse(ctx, f, opts)
	if err != nil {
		return res, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return res, nil
}

func printParseResult(w io.Writer, res *importer.ParseResult, currency string) {
	fmt.Fprintf(w, "Format: %s (%s)\n", res.DetectedBankName, res.DetectedBank)
	if res.NeedsMapping {
		fmt.Fprintf(w, "Columns not recognized, map them with --map field=header. Headers: %s\n", strings.Join(res.Headers, ", "))
	}
	fmt.Fprintf(w, "Rows: %d, parsed: %d, errors: %d\n", res.TotalRows, res.ParsedCount, len(res.Errors))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tMETHOD")
	for _, t := range res.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ISODate(), t.Description, formatMoney(t.Signed(), currency), t.PaymentMethod)
	}
	_ = tw.Flush()

	for _, re := range res.Errors {
		fmt.Fprintf(w, "row %d: %s\n", re.Row, re.Reason)
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "row %d: warning: %s\n", wn.Row, wn.Reason)
	}
	fmt.Fprintf(w, "Net: %s\n", formatMoney(importer.Total(res.Transactions), currency))
}

func isInInbox(root, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == filepath.Join(root, importer.InboxDir)
}
