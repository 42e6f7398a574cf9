// Package ledger stores normalized transactions as month-partitioned CSV
// files under ledger/YYYY/MM/transactions.csv.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Header is the CSV header of a month file.
const Header = "id,company_id,batch_id,date,description,payee,amount,type,category,payment_method,check_number,reference_number,source_bank,original_description,imported_at"

const (
	numFields     = 15
	colID         = 0
	colCompany    = 1
	colBatch      = 2
	colDate       = 3
	colDesc       = 4
	colPayee      = 5
	colAmount     = 6
	colType       = 7
	colCategory   = 8
	colMethod     = 9
	colCheck      = 10
	colReference  = 11
	colSource     = 12
	colOrigDesc   = 13
	colImportedAt = 14
)

// ReadTransactions reads every row of a month file.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}

	var txns []model.Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return txns, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger CSV: %w", err)
		}
		txn, err := Unmarshal(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
}

// WriteTransactions writes a complete month file, header included.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return writeRows(cw, txns)
}

// AppendTransactions writes rows without a header.
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	return writeRows(csv.NewWriter(w), txns)
}

func writeRows(cw *csv.Writer, txns []model.Transaction) error {
	for _, t := range txns {
		if err := cw.Write(Marshal(t)); err != nil {
			return fmt.Errorf("writing transaction %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Marshal converts a transaction to a CSV row.
func Marshal(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID
	row[colCompany] = t.CompanyID
	row[colBatch] = t.BatchID
	row[colDate] = t.ISODate()
	row[colDesc] = t.Description
	row[colPayee] = t.Payee
	row[colAmount] = t.Amount.StringFixed(2)
	row[colType] = string(t.Type)
	row[colCategory] = t.Category
	row[colMethod] = string(t.PaymentMethod)
	row[colCheck] = t.CheckNumber
	row[colReference] = t.ReferenceNumber
	row[colSource] = t.SourceBankName
	row[colOrigDesc] = t.OriginalDescription
	if !t.ImportedAt.IsZero() {
		row[colImportedAt] = t.ImportedAt.UTC().Format(time.RFC3339)
	}
	return row
}

// Unmarshal converts a CSV row to a transaction.
func Unmarshal(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var importedAt time.Time
	if record[colImportedAt] != "" {
		importedAt, err = time.Parse(time.RFC3339, record[colImportedAt])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing imported_at %q: %w", record[colImportedAt], err)
		}
	}

	return model.Transaction{
		ID:                  record[colID],
		CompanyID:           record[colCompany],
		BatchID:             record[colBatch],
		Date:                date,
		Description:         record[colDesc],
		Payee:               record[colPayee],
		Amount:              amount,
		Type:                model.TxnType(record[colType]),
		Category:            record[colCategory],
		PaymentMethod:       model.PaymentMethod(record[colMethod]),
		CheckNumber:         record[colCheck],
		ReferenceNumber:     record[colReference],
		SourceBankName:      record[colSource],
		OriginalDescription: record[colOrigDesc],
		ImportedAt:          importedAt,
	}, nil
}
