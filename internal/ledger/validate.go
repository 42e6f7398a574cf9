package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// ErrValidation wraps every rejected insert.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a single violation.
type ValidationError struct {
	Field       string
	TxnID       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Field, e.TxnID, e.Description)
}

var hundred = decimal.NewFromInt(100)

// Validate checks txns destined for the file of year/month.
func Validate(txns []model.Transaction, year, month int) []ValidationError {
	var errs []ValidationError
	add := func(field string, t model.Transaction, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, TxnID: t.ID, Description: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool, len(txns))
	for _, t := range txns {
		switch {
		case t.ID == "":
			add("id", t, "missing id")
		case seen[t.ID]:
			add("id", t, "duplicate id")
		}
		seen[t.ID] = true

		if t.Amount.IsNegative() {
			add("amount", t, "amount %s is negative", t.Amount)
		}
		if shifted := t.Amount.Mul(hundred); !shifted.Equal(shifted.Floor()) {
			add("amount", t, "amount %s has more than 2 decimal places", t.Amount)
		}
		if !t.Type.Valid() {
			add("type", t, "unknown type %q", t.Type)
		}
		if !t.PaymentMethod.Valid() {
			add("payment_method", t, "unknown payment method %q", t.PaymentMethod)
		}
		if t.Date.IsZero() {
			add("date", t, "missing date")
		} else if t.Date.Year() != year || int(t.Date.Month()) != month {
			add("date", t, "date %s not in %04d-%02d", t.ISODate(), year, month)
		}
	}
	return errs
}

func joinErrors(verrs []ValidationError) error {
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
