package normalize

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

type methodRule struct {
	keywords []string
	method   model.PaymentMethod
}

// methodChain is evaluated in order. Deposit codes come before CHECK/CHK:
// a deposited check is a transfer into the account, not a check the owner
// wrote.
var methodChain = []methodRule{
	{[]string{"CHECK_DEPOSIT", "DSLIP", "REMOTE_DEPOSIT", "MOBILE_DEPOSIT"}, model.PaymentBankTransfer},
	{[]string{"CHECK", "CHK"}, model.PaymentCheck},
	{[]string{"ZELLE", "QUICKPAY"}, model.PaymentZelle},
	{[]string{"PAYPAL"}, model.PaymentPayPal},
	{[]string{"VENMO"}, model.PaymentVenmo},
	{[]string{"DEBIT_CARD", "DEBIT CARD"}, model.PaymentDebitCard},
	{[]string{"CREDIT_CARD", "CREDIT CARD"}, model.PaymentCreditCard},
	{[]string{"ATM", "CASH"}, model.PaymentCash},
	{[]string{"ACH", "TRANSFER", "XFER", "WIRE", "BILLPAY", "DEPOSIT"}, model.PaymentBankTransfer},
	// Short codes last; "POS" is also a substring of "DEPOSIT".
	{[]string{"POS"}, model.PaymentDebitCard},
	{[]string{"SALE"}, model.PaymentCreditCard},
}

// depositSlipCodes mark rows whose check/slip column holds a deposit slip
// number rather than a check number.
var depositSlipCodes = []string{"DSLIP", "CHECK_DEPOSIT"}

// PaymentMethodFor maps a bank transaction-type code to a payment method.
func PaymentMethodFor(code string) model.PaymentMethod {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return model.PaymentOther
	}
	for _, rule := range methodChain {
		if containsAny(upper, rule.keywords) {
			return rule.method
		}
	}
	return model.PaymentOther
}

// IsDepositSlip reports whether code denotes a deposit slip.
func IsDepositSlip(code string) bool {
	return containsAny(strings.ToUpper(code), depositSlipCodes)
}

var checkInDescription = regexp.MustCompile(`(?i)\b(?:CHECK|CHK)\s*(?:#|NO\.?|NUMBER)?\s*(\d{2,})\b`)

// CheckNumberFromDescription pulls "1234" out of descriptions like
// "CHECK #1234" or "CHK 1234".
func CheckNumberFromDescription(desc string) string {
	m := checkInDescription.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return m[1]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
