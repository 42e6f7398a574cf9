package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical ISO layout for transaction dates.
const DateFormat = "2006-01-02"

// TxnType is the direction of a transaction from the ledger owner's view.
type TxnType string

const (
	TypeIncome  TxnType = "income"
	TypeExpense TxnType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TxnType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// PaymentMethod is the canonical payment channel of a transaction.
type PaymentMethod string

const (
	PaymentCheck        PaymentMethod = "check"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentCash         PaymentMethod = "cash"
	PaymentZelle        PaymentMethod = "zelle"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentVenmo        PaymentMethod = "venmo"
	PaymentOther        PaymentMethod = "other"
)

// PaymentMethods lists every payment method in display order.
var PaymentMethods = []PaymentMethod{
	PaymentCheck,
	PaymentBankTransfer,
	PaymentDebitCard,
	PaymentCreditCard,
	PaymentCash,
	PaymentZelle,
	PaymentPayPal,
	PaymentVenmo,
	PaymentOther,
}

// Valid reports whether m is one of PaymentMethods.
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// Transaction is a normalized ledger transaction.
// Amount is never negative; the sign lives in Type.
type Transaction struct {
	ID                  string          `json:"id,omitempty"`
	CompanyID           string          `json:"companyId,omitempty"`
	BatchID             string          `json:"batchId,omitempty"`
	Date                time.Time       `json:"-"`
	Description         string          `json:"description"`
	Payee               string          `json:"payee,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Type                TxnType         `json:"type"`
	Category            string          `json:"category,omitempty"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
	CheckNumber         string          `json:"checkNumber,omitempty"`
	ReferenceNumber     string          `json:"referenceNumber,omitempty"`
	SourceBankName      string          `json:"sourceBankName"`
	OriginalDescription string          `json:"originalDescription"`
	ImportedAt          time.Time       `json:"importedAt,omitzero"`
}

// ISODate returns the transaction date as yyyy-mm-dd.
func (t Transaction) ISODate() string {
	return t.Date.Format(DateFormat)
}

// Signed returns the amount with the sign implied by Type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsCategorized reports whether a category has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.Category != ""
}

type transactionJSON Transaction

// MarshalJSON writes Date as an ISO date string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date string `json:"date"`
		transactionJSON
	}{t.ISODate(), transactionJSON(t)})
}

// UnmarshalJSON reads Date from an ISO date string.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var aux struct {
		Date string `json:"date"`
		transactionJSON
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Transaction(aux.transactionJSON)
	if aux.Date == "" {
		return nil
	}
	d, err := time.Parse(DateFormat, aux.Date)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", aux.Date, err)
	}
	t.Date = d
	return nil
}

// RowError records a problem with a single source row.
// Row is the 1-based line number in the file; the header is line 1.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
