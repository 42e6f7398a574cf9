package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/tally/internal/model"
)

func TestPaymentMethodFor(t *testing.T) {
	tests := []struct {
		code string
		want model.PaymentMethod
	}{
		{"CHECK_DEPOSIT", model.PaymentBankTransfer},
		{"DSLIP", model.PaymentBankTransfer},
		{"dslip", model.PaymentBankTransfer},
		{"CHECK_PAID", model.PaymentCheck},
		{"CHK", model.PaymentCheck},
		{"QUICKPAY_DEBIT", model.PaymentZelle},
		{"Zelle payment", model.PaymentZelle},
		{"PAYPAL TRANSFER", model.PaymentPayPal},
		{"VENMO", model.PaymentVenmo},
		{"DEBIT_CARD", model.PaymentDebitCard},
		{"POS PURCHASE", model.PaymentDebitCard},
		{"Sale", model.PaymentCreditCard},
		{"ATM", model.PaymentCash},
		{"ATM_DEPOSIT", model.PaymentCash},
		{"ACH_DEBIT", model.PaymentBankTransfer},
		{"ACH_CREDIT", model.PaymentBankTransfer},
		{"WIRE_OUTGOING", model.PaymentBankTransfer},
		{"DEPOSIT", model.PaymentBankTransfer},
		{"FEE_TRANSACTION", model.PaymentOther},
		{"", model.PaymentOther},
		{"   ", model.PaymentOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PaymentMethodFor(tt.code), "code: %q", tt.code)
	}
}

func TestIsDepositSlip(t *testing.T) {
	assert.True(t, IsDepositSlip("DSLIP"))
	assert.True(t, IsDepositSlip("check_deposit"))
	assert.False(t, IsDepositSlip("CHECK_PAID"))
	assert.False(t, IsDepositSlip(""))
}

func TestCheckNumberFromDescription(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"CHECK #1042", "1042"},
		{"CHECK 1043", "1043"},
		{"chk no. 77", "77"},
		{"GITHUB *PRO SUBSCRIPTION", ""},
		{"CHECKCARD 0315 STARBUCKS", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CheckNumberFromDescription(tt.desc), "desc: %q", tt.desc)
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", Description("  GITHUB   *PRO\tSUBSCRIPTION "))
	assert.Equal(t, "", Description("   "))
}
