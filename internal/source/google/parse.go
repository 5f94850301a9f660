package google

import (
	"strings"
	"time"

	"finpulse/internal/core"
)

// dateLayouts are tried in order when parsing the date column. Sheets
// commonly serves either ISO dates or the locale D/M/Y form.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

// parseTransactionRow converts a sheet row (Date, Type, Amount,
// Category, Class) into a transaction. Returns false for rows that
// cannot form a usable record; callers skip those.
func parseTransactionRow(cols []string) (core.Transaction, bool) {
	if len(cols) < 4 {
		return core.Transaction{}, false
	}

	date, ok := parseDate(cols[0])
	if !ok {
		return core.Transaction{}, false
	}

	typ := core.TransactionType(strings.ToLower(strings.TrimSpace(cols[1])))
	if !typ.IsValid() {
		return core.Transaction{}, false
	}

	amount, err := core.ParseAmount(cols[2])
	if err != nil {
		return core.Transaction{}, false
	}

	tx := core.Transaction{
		Type:     typ,
		Amount:   amount,
		Date:     date,
		Category: strings.TrimSpace(cols[3]),
	}
	if len(cols) > 4 {
		class := core.ExpenseClass(strings.ToLower(strings.TrimSpace(cols[4])))
		if class.IsValid() {
			tx.Class = class
		}
	}
	return tx, true
}

// parseBudgetRow converts a sheet row (Amount, Start, End) into a
// budget. Missing dates leave the budget open-ended on that side.
func parseBudgetRow(cols []string) (core.Budget, bool) {
	if len(cols) < 1 {
		return core.Budget{}, false
	}
	amount, err := core.ParseAmount(cols[0])
	if err != nil || amount.IsZero() {
		return core.Budget{}, false
	}

	b := core.Budget{Amount: amount}
	if len(cols) > 1 && cols[1] != "" {
		if start, ok := parseDate(cols[1]); ok {
			b.Start = start
		} else {
			return core.Budget{}, false
		}
	}
	if len(cols) > 2 && cols[2] != "" {
		if end, ok := parseDate(cols[2]); ok {
			b.End = end
		} else {
			return core.Budget{}, false
		}
	}
	return b, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOnly(t), true
		}
	}
	return time.Time{}, false
}
