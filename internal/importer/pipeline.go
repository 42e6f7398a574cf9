package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/bankformat"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/normalize"
)

var (
	// ErrEmptyFile is returned for input without any records.
	ErrEmptyFile = errors.New("file is empty")
	// ErrNoHeader is returned when the first record has no column names.
	ErrNoHeader = errors.New("file has no header row")
	// ErrUnknownFormat is returned for an unregistered bank format override.
	ErrUnknownFormat = errors.New("unknown bank format")
)

// sampleSize is the number of raw rows echoed back for column mapping.
const sampleSize = 5

// Options controls a single parse.
type Options struct {
	// BankFormat forces a profile by id instead of detecting one.
	BankFormat string
	// CompanyID scopes every parsed transaction.
	CompanyID string
	// Mapping assigns file headers to logical fields, typically after a
	// parse came back with NeedsMapping.
	Mapping map[bankformat.Field]string
}

// ParseResult is the outcome of parsing one uploaded file. File-level
// failures come back as Success == false with Error set.
type ParseResult struct {
	Success          bool                `json:"success"`
	Error            string              `json:"error,omitempty"`
	Transactions     []model.Transaction `json:"transactions"`
	DetectedBank     string              `json:"detectedBank"`
	DetectedBankName string              `json:"detectedBankName"`
	NeedsMapping     bool                `json:"needsMapping"`
	Headers          []string            `json:"headers"`
	SampleRows       []RawRow            `json:"sampleRows"`
	TotalRows        int                 `json:"totalRows"`
	ParsedCount      int                 `json:"parsedCount"`
	Errors           []model.RowError    `json:"errors"`
	Warnings         []model.RowError    `json:"warnings,omitempty"`
}

// Pipeline turns bank CSV exports into normalized transactions.
type Pipeline struct {
	registry *bankformat.Registry
	logger   *log.Logger
}

// NewPipeline creates a Pipeline over registry. A nil logger discards output.
func NewPipeline(registry *bankformat.Registry, logger *log.Logger) *Pipeline {
	if registry == nil {
		registry = bankformat.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{registry: registry, logger: logger}
}

// Parse reads r, detects its bank format and normalizes every data row.
// Bad rows are reported in Errors and never stop the parse. The returned
// error is non-nil only for file-level failures, in which case the result
// carries the same message.
func (p *Pipeline) Parse(ctx context.Context, r io.Reader, opts Options) (*ParseResult, error) {
	res := &ParseResult{}

	tok := newTokenizer(r)
	headers, err := tok.header()
	if err != nil {
		return fail(res, err)
	}
	res.Headers = headers
	if !hasName(headers) {
		return fail(res, ErrNoHeader)
	}

	profile, err := p.profileFor(headers, opts)
	if err != nil {
		return fail(res, err)
	}
	res.DetectedBank = profile.ID
	res.DetectedBankName = profile.DisplayName
	res.NeedsMapping = profile.IsGeneric() && len(opts.Mapping) == 0
	p.logger.Debug("bank format selected", "format", profile.ID, "columns", len(headers))

	var acc fold
	for {
		if err := ctx.Err(); err != nil {
			return fail(res, err)
		}
		row, line, err := tok.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if line == 0 {
				return fail(res, fmt.Errorf("reading rows: %w", err))
			}
			res.TotalRows++
			acc = acc.with(rowOutcome{line: line, err: err})
			continue
		}
		res.TotalRows++
		if len(res.SampleRows) < sampleSize {
			res.SampleRows = append(res.SampleRows, row)
		}
		acc = acc.with(normalizeRow(profile, row, line, opts.CompanyID))
	}

	res.Success = true
	res.Transactions = acc.txns
	res.ParsedCount = len(acc.txns)
	res.Errors = acc.errs
	res.Warnings = acc.warns
	p.logger.Info("parsed bank file",
		"format", profile.ID,
		"rows", res.TotalRows,
		"parsed", res.ParsedCount,
		"errors", len(res.Errors),
	)
	return res, nil
}

func (p *Pipeline) profileFor(headers []string, opts Options) (bankformat.Profile, error) {
	var profile bankformat.Profile
	if opts.BankFormat != "" {
		var ok bool
		profile, ok = p.registry.Get(opts.BankFormat)
		if !ok {
			return bankformat.Profile{}, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.BankFormat)
		}
	} else {
		profile = p.registry.Detect(headers)
	}
	if len(opts.Mapping) > 0 {
		profile = profile.WithMapping(opts.Mapping)
	}
	return profile, nil
}

func fail(res *ParseResult, err error) (*ParseResult, error) {
	res.Success = false
	res.Error = err.Error()
	res.Transactions = nil
	return res, err
}

func hasName(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return true
		}
	}
	return false
}

// rowOutcome is the result of normalizing one data row.
type rowOutcome struct {
	line int
	txn  model.Transaction
	warn string
	err  error
}

// fold accumulates row outcomes into transactions, errors and warnings.
type fold struct {
	txns  []model.Transaction
	errs  []model.RowError
	warns []model.RowError
}

func (f fold) with(o rowOutcome) fold {
	if o.err != nil {
		f.errs = append(f.errs, model.RowError{Row: o.line, Reason: o.err.Error()})
		return f
	}
	f.txns = append(f.txns, o.txn)
	if o.warn != "" {
		f.warns = append(f.warns, model.RowError{Row: o.line, Reason: o.warn})
	}
	return f
}

func normalizeRow(profile bankformat.Profile, row RawRow, line int, companyID string) rowOutcome {
	out := rowOutcome{line: line}

	rawDate, ok := profile.Field(row, bankformat.FieldDate)
	if !ok {
		out.err = errors.New("missing date")
		return out
	}
	date, err := normalize.ParseDate(rawDate, profile.DateLayouts)
	if err != nil {
		out.err = fmt.Errorf("unparseable date %q", rawDate)
		return out
	}

	payee, _ := profile.Field(row, bankformat.FieldPayee)
	rawDesc, _ := profile.Field(row, bankformat.FieldDescription)
	if rawDesc == "" {
		rawDesc = payee
	}
	desc := normalize.Description(rawDesc)
	if desc == "" {
		desc = "Unknown transaction"
	}

	amount := amountFor(profile, row)
	if !amount.OK() {
		out.warn = "amount defaulted to 0: " + amount.Reason
	}
	value := amount.Value
	if profile.NegateAmounts {
		value = value.Neg()
	}

	code, _ := profile.Field(row, bankformat.FieldType)
	details, _ := profile.Field(row, bankformat.FieldDetails)
	method := normalize.PaymentMethodFor(code)
	if normalize.IsDepositSlip(details) || (method == model.PaymentOther && details != "") {
		method = normalize.PaymentMethodFor(details)
	}

	check, _ := profile.Field(row, bankformat.FieldCheckNumber)
	switch {
	case normalize.IsDepositSlip(code), normalize.IsDepositSlip(details):
		check = ""
	case check == "" && method == model.PaymentCheck:
		check = normalize.CheckNumberFromDescription(desc)
	}
	ref, _ := profile.Field(row, bankformat.FieldReference)

	out.txn = model.Transaction{
		CompanyID:           companyID,
		Date:                date,
		Description:         desc,
		Payee:               normalize.Description(payee),
		Amount:              value.Abs(),
		Type:                normalize.Direction(value),
		PaymentMethod:       method,
		CheckNumber:         check,
		ReferenceNumber:     ref,
		SourceBankName:      profile.DisplayName,
		OriginalDescription: rawDesc,
	}
	return out
}

// amountFor applies the profile's sign convention. Signed profiles fall back
// to debit/credit columns on rows without an amount value.
func amountFor(profile bankformat.Profile, row RawRow) normalize.Outcome {
	debit, hasDebit := profile.Field(row, bankformat.FieldDebit)
	credit, hasCredit := profile.Field(row, bankformat.FieldCredit)
	if profile.Convention == bankformat.SplitDebitCredit {
		return normalize.ParseSplit(debit, credit)
	}
	raw, ok := profile.Field(row, bankformat.FieldAmount)
	if !ok && (hasDebit || hasCredit) {
		return normalize.ParseSplit(debit, credit)
	}
	return normalize.ParseAmount(raw)
}

// Total returns the signed sum of txns.
func Total(txns []model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Signed())
	}
	return sum
}
