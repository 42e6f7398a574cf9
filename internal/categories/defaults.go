package categories

import "github.com/cleared-dev/tally/internal/model"

// DefaultCategories returns the starter chart for an entity type.
// Unknown entity types get the sole proprietor chart.
func DefaultCategories(entityType string) []model.Category {
	cats := soleProprietor()
	switch entityType {
	case "llc_multi_member", "s_corp":
		cats = append(cats,
			model.Category{Name: "Payroll", Type: model.TypeExpense, TaxLine: "form_1120s_8", Description: "Wages and payroll taxes"},
			model.Category{Name: "Owner Distributions", Type: model.TypeExpense, Description: "Draws and distributions to owners"},
		)
	}
	return cats
}

func soleProprietor() []model.Category {
	return []model.Category{
		{Name: "Sales", Type: model.TypeIncome, TaxLine: "schedule_c_1", Description: "Customer payments"},
		{Name: "Interest Income", Type: model.TypeIncome, Description: "Bank interest"},
		{Name: "Transfers In", Type: model.TypeIncome, Description: "Transfers between own accounts"},
		{Name: "Advertising", Type: model.TypeExpense, TaxLine: "schedule_c_8", Description: "Advertising and marketing"},
		{Name: "Software", Type: model.TypeExpense, TaxLine: "schedule_c_18", Description: "Software subscriptions and hosting"},
		{Name: "Office Supplies", Type: model.TypeExpense, TaxLine: "schedule_c_18", Description: "Office supplies and expenses"},
		{Name: "Professional Services", Type: model.TypeExpense, TaxLine: "schedule_c_17", Description: "Legal, accounting, consulting"},
		{Name: "Travel", Type: model.TypeExpense, TaxLine: "schedule_c_24a", Description: "Airfare, lodging, rides"},
		{Name: "Meals", Type: model.TypeExpense, TaxLine: "schedule_c_24b", Description: "Business meals"},
		{Name: "Rent", Type: model.TypeExpense, TaxLine: "schedule_c_20b", Description: "Office and equipment rent"},
		{Name: "Bank Fees", Type: model.TypeExpense, TaxLine: "schedule_c_27a", Description: "Account and card fees"},
		{Name: "Transfers Out", Type: model.TypeExpense, Description: "Transfers between own accounts"},
	}
}
