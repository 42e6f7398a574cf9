package categories

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/tally/internal/model"
)

const (
	numFields  = 4
	colName    = 0
	colType    = 1
	colTaxLine = 2
	colDesc    = 3
)

var header = []string{"name", "type", "tax_line", "description"}

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(c model.Category) []string {
	row := make([]string, numFields)
	row[colName] = c.Name
	row[colType] = string(c.Type)
	row[colTaxLine] = c.TaxLine
	row[colDesc] = c.Description
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colName] == "" {
		return model.Category{}, fmt.Errorf("category name is empty")
	}
	typ := model.TxnType(record[colType])
	if !typ.Valid() {
		return model.Category{}, fmt.Errorf("unknown category type %q", record[colType])
	}
	return model.Category{
		Name:        record[colName],
		Type:        typ,
		TaxLine:     record[colTaxLine],
		Description: record[colDesc],
	}, nil
}
