package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// OutcomeStatus tells whether an amount was parsed or defaulted.
type OutcomeStatus int

const (
	// OutcomeOK means the text parsed as a number.
	OutcomeOK OutcomeStatus = iota
	// OutcomeDefaulted means the text was unusable and the value is zero.
	OutcomeDefaulted
)

// Outcome is the result of amount parsing. Bad input never fails; it yields
// a zero value with Status == OutcomeDefaulted and a Reason.
type Outcome struct {
	Value  decimal.Decimal
	Status OutcomeStatus
	Reason string
}

// OK reports whether the value was parsed from the input.
func (o Outcome) OK() bool { return o.Status == OutcomeOK }

func ok(v decimal.Decimal) Outcome { return Outcome{Value: v} }

func defaulted(reason string) Outcome {
	return Outcome{Value: decimal.Zero, Status: OutcomeDefaulted, Reason: reason}
}

// signState tracks the sign markers seen while scanning an amount.
type signState int

const (
	unsigned signState = iota
	parenNegative
	creditSuffix
	debitSuffix
)

// next applies a marker to the current state. Negative markers are sticky:
// once parentheses mark a value negative, a CR suffix does not flip it.
func (s signState) next(marker signState) signState {
	switch s {
	case unsigned:
		return marker
	case parenNegative:
		return parenNegative
	case creditSuffix, debitSuffix:
		if marker == parenNegative {
			return parenNegative
		}
		return marker
	}
	return s
}

func (s signState) resolve(v decimal.Decimal) decimal.Decimal {
	switch s {
	case parenNegative, debitSuffix:
		return v.Abs().Neg()
	case creditSuffix:
		return v.Abs()
	default:
		return v
	}
}

// currencyCodes are stripped from amount text along with currency symbols.
var currencyCodes = []string{"USD", "CAD", "EUR", "GBP", "AUD"}

// ParseAmount parses a signed amount such as "-12.00", "($1,234.56)",
// "100.00CR" or "50.00 DR".
func ParseAmount(raw string) Outcome {
	s := strings.TrimSpace(raw)
	if s == "" {
		return defaulted("empty amount")
	}

	state := unsigned
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		state = state.next(parenNegative)
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = cleanNumber(s)

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "CR"):
		state = state.next(creditSuffix)
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "DR"):
		state = state.next(debitSuffix)
		s = s[:len(s)-2]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		state = state.next(parenNegative)
		s = s[1 : len(s)-1]
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return defaulted("not a number: " + strings.TrimSpace(raw))
	}
	return ok(state.resolve(v))
}

// ParseSplit combines separate debit and credit columns into one signed
// amount: credit - |debit|. A non-empty column that is not a number
// defaults the whole amount.
func ParseSplit(debit, credit string) Outcome {
	debit, credit = strings.TrimSpace(debit), strings.TrimSpace(credit)
	if debit == "" && credit == "" {
		return defaulted("empty debit and credit")
	}
	d, dOK := parseUnsigned(debit)
	if debit != "" && !dOK {
		return defaulted("debit not a number: " + debit)
	}
	c, cOK := parseUnsigned(credit)
	if credit != "" && !cOK {
		return defaulted("credit not a number: " + credit)
	}
	return ok(c.Sub(d.Abs()))
}

func parseUnsigned(raw string) (decimal.Decimal, bool) {
	s := cleanNumber(strings.Trim(strings.TrimSpace(raw), "()"))
	if s == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// cleanNumber strips currency symbols, currency codes, thousands
// separators and spaces.
func cleanNumber(s string) string {
	upper := strings.ToUpper(s)
	for _, code := range currencyCodes {
		if i := strings.Index(upper, code); i >= 0 {
			s = s[:i] + s[i+len(code):]
			upper = upper[:i] + upper[i+len(code):]
		}
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ',' || unicode.IsSpace(r):
			return -1
		case unicode.Is(unicode.Sc, r):
			return -1
		}
		return r
	}, s)
}

// Direction returns the transaction type implied by a signed amount.
// Zero counts as income.
func Direction(v decimal.Decimal) model.TxnType {
	if v.IsNegative() {
		return model.TypeExpense
	}
	return model.TypeIncome
}
