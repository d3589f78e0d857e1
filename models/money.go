package models

import "github.com/shopspring/decimal"

func init() {
	// prices travel as plain JSON numbers, the way the backend stores them
	decimal.MarshalJSONWithoutQuotes = true
}

// FormatBRL renders an amount with two decimals, e.g. "R$ 12.50".
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
