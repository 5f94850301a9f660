package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

// topCategories is the number of ranked entries before the remainder
// rolls up into the synthetic "Other" bucket.
const topCategories = 5

// Categories sums expense amounts per category within the window,
// ranks them descending with first-seen order breaking ties, keeps the
// top five and rolls everything else into one "Other" entry.
//
// The summary is total-preserving: sum(Top) + Other == Total. Expenses
// without a category count as "Uncategorized".
func Categories(txs []core.Transaction, w core.TimeWindow) core.CategorySummary {
	totals := make(map[string]decimal.Decimal)
	var order []string // first-seen order for stable tie-breaking

	for _, t := range txs {
		if t.Type != core.Expense || !t.In(w) {
			continue
		}
		name := strings.TrimSpace(t.Category)
		if name == "" {
			name = core.Uncategorized
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(t.Amount)
	}

	entries := make([]core.CategoryAmount, 0, len(order))
	total := decimal.Zero
	for _, name := range order {
		amount := core.RoundCents(totals[name])
		entries = append(entries, core.CategoryAmount{Name: name, Amount: amount})
		total = total.Add(amount)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})

	summary := core.CategorySummary{Total: total}
	if len(entries) <= topCategories {
		summary.Top = entries
		return summary
	}

	summary.Top = entries[:topCategories]
	other := decimal.Zero
	for _, e := range entries[topCategories:] {
		other = other.Add(e.Amount)
	}
	summary.Other = &core.CategoryAmount{Name: core.OtherCategory, Amount: other}
	return summary
}
