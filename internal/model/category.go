package model

// Category is one entry of the chart of categories that rules assign.
type Category struct {
	Name        string
	Type        TxnType
	TaxLine     string
	Description string
}
