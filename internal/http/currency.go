package http

import "github.com/shopspring/decimal"

// CurrencyFormatter renders float amounts with the configured symbol,
// dropping a trailing ".00" so narrative sentences read naturally.
type CurrencyFormatter struct {
	symbol string
}

func NewCurrencyFormatter(symbol string) *CurrencyFormatter {
	if symbol == "" {
		symbol = "€"
	}
	return &CurrencyFormatter{symbol: symbol}
}

func (f *CurrencyFormatter) Format(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	s := d.StringFixed(2)
	if d.Equal(d.Truncate(0)) {
		s = d.Truncate(0).String()
	}
	return f.symbol + s
}
