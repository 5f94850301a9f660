// Package core holds the domain types shared by the derived-metrics
// pipeline: transactions, windows, bucketed series, category summaries,
// score cards and the metrics snapshot the scoring engine consumes.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundCents applies the monetary rounding invariant: half-up rounding
// to two decimal places. Every sum the aggregators produce passes
// through here before any further arithmetic.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseAmount converts a decimal string to a non-negative amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for unparseable or negative input; callers
// on the read path map that to "treat as zero" per the error contract.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountOrZero is the forgiving variant used when reading external
// records: anything unparseable becomes zero, never an error.
func AmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
