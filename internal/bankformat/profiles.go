package bankformat

const (
	usDate  = "01/02/2006"
	usDate1 = "1/2/2006"
	isoDate = "2006-01-02"
)

func hasAll(headers ...string) Predicate { return Predicate{Kind: AllOf, Headers: headers} }
func hasAny(headers ...string) Predicate { return Predicate{Kind: AnyOf, Headers: headers} }
func lacks(headers ...string) Predicate  { return Predicate{Kind: NoneOf, Headers: headers} }

// builtinProfiles lists known layouts, most specific first.
func builtinProfiles() []Profile {
	return []Profile{
		{
			ID:          "chase_checking",
			DisplayName: "Chase Checking",
			Detect:      []Predicate{hasAll("Details", "Posting Date", "Description", "Amount")},
			Aliases: map[Field][]string{
				FieldDate:        {"Posting Date"},
				FieldDescription: {"Description"},
				FieldAmount:      {"Amount"},
				FieldType:        {"Type"},
				FieldDetails:     {"Details"},
				FieldCheckNumber: {"Check or Slip #"},
			},
			DateLayouts: []string{usDate, usDate1},
			Convention:  Signed,
		},
		{
			ID:          "chase_credit",
			DisplayName: "Chase Credit Card",
			Detect:      []Predicate{hasAll("Transaction Date", "Post Date", "Description", "Amount")},
			Aliases: map[Field][]string{
				FieldDate:        {"Transaction Date", "Post Date"},
				FieldDescription: {"Description"},
				FieldAmount:      {"Amount"},
				FieldType:        {"Type"},
			},
			DateLayouts: []string{usDate, usDate1},
			Convention:  Signed,
		},
		{
			ID:          "capital_one",
			DisplayName: "Capital One",
			Detect:      []Predicate{hasAll("Posted Date", "Card No.", "Debit", "Credit")},
			Aliases: map[Field][]string{
				FieldDate:        {"Transaction Date", "Posted Date"},
				FieldDescription: {"Description"},
				FieldDebit:       {"Debit"},
				FieldCredit:      {"Credit"},
			},
			DateLayouts: []string{isoDate, usDate},
			Convention:  SplitDebitCredit,
		},
		{
			ID:          "amex",
			DisplayName: "American Express",
			Detect: []Predicate{
				hasAll("Date", "Description", "Amount"),
				hasAny("Appears On Your Statement As", "Extended Details"),
			},
			Aliases: map[Field][]string{
				FieldDate:        {"Date"},
				FieldDescription: {"Description"},
				FieldAmount:      {"Amount"},
				FieldReference:   {"Reference"},
				FieldPayee:       {"Appears On Your Statement As"},
			},
			DateLayouts:   []string{usDate, usDate1},
			Convention:    Signed,
			NegateAmounts: true,
		},
		{
			ID:          "citi",
			DisplayName: "Citi",
			Detect:      []Predicate{hasAll("Status", "Date", "Description", "Debit", "Credit")},
			Aliases: map[Field][]string{
				FieldDate:        {"Date"},
				FieldDescription: {"Description"},
				FieldDebit:       {"Debit"},
				FieldCredit:      {"Credit"},
			},
			DateLayouts: []string{usDate, usDate1},
			Convention:  SplitDebitCredit,
		},
		{
			ID:          "discover",
			DisplayName: "Discover",
			Detect:      []Predicate{hasAll("Trans. Date", "Post Date", "Description", "Amount")},
			Aliases: map[Field][]string{
				FieldDate:        {"Trans. Date", "Post Date"},
				FieldDescription: {"Description"},
				FieldAmount:      {"Amount"},
			},
			DateLayouts:   []string{usDate, usDate1},
			Convention:    Signed,
			NegateAmounts: true,
		},
		{
			ID:          "td_bank",
			DisplayName: "TD Bank",
			Detect:      []Predicate{hasAll("Bank RTN", "Account Number", "Transaction Type", "Debit", "Credit")},
			Aliases: map[Field][]string{
				FieldDate:        {"Date"},
				FieldDescription: {"Description"},
				FieldDebit:       {"Debit"},
				FieldCredit:      {"Credit"},
				FieldType:        {"Transaction Type"},
				FieldCheckNumber: {"Check Number"},
			},
			DateLayouts: []string{isoDate, usDate},
			Convention:  SplitDebitCredit,
		},
		{
			ID:          "us_bank",
			DisplayName: "U.S. Bank",
			Detect:      []Predicate{hasAll("Date", "Transaction", "Name", "Memo", "Amount")},
			Aliases: map[Field][]string{
				FieldDate:        {"Date"},
				FieldDescription: {"Name", "Memo"},
				FieldAmount:      {"Amount"},
				FieldType:        {"Transaction"},
			},
			DateLayouts: []string{isoDate, usDate},
			Convention:  Signed,
		},
		{
			ID:          "bank_of_america",
			DisplayName: "Bank of America",
			Detect: []Predicate{
				hasAll("Date", "Description", "Amount", "Running Bal."),
				lacks("Status"),
			},
			Aliases: map[Field][]string{
				FieldDate:        {"Date"},
				FieldDescription: {"Description"},
				FieldAmount:      {"Amount"},
			},
			DateLayouts: []string{usDate, usDate1},
			Convention:  Signed,
		},
	}
}

// Generic returns the fallback profile. Its aliases cover the common header
// spellings and it infers split debit/credit columns per row when no amount
// column is present.
func Generic() Profile {
	return Profile{
		ID:          GenericID,
		DisplayName: "Generic CSV",
		Aliases: map[Field][]string{
			FieldDate: {
				"Date", "Transaction Date", "Trans. Date", "Posting Date", "Post Date",
				"Posted Date", "Value Date", "Booking Date",
			},
			FieldDescription: {
				"Description", "Transaction Description", "Memo", "Narrative", "Details",
				"Name", "Payee",
			},
			FieldAmount: {"Amount", "Transaction Amount", "Amount (USD)", "Value"},
			FieldDebit:  {"Debit", "Debit Amount", "Withdrawal", "Withdrawals", "Money Out", "Paid Out"},
			FieldCredit: {"Credit", "Credit Amount", "Deposit", "Deposits", "Money In", "Paid In"},
			FieldType:   {"Type", "Transaction Type"},
			FieldCheckNumber: {
				"Check Number", "Check #", "Check No.", "Check or Slip #", "Cheque Number",
			},
			FieldReference: {"Reference", "Reference Number", "Ref", "Ref #", "Transaction ID"},
			FieldPayee:     {"Payee", "Merchant", "Name"},
		},
		DateLayouts: []string{usDate, isoDate, usDate1, "01/02/06", "01-02-2006", "2006/01/02"},
		Convention:  Signed,
	}
}
