package aggregate

import (
	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

// Metrics derives the scalar snapshot for the active window, comparing
// against the previous window's transactions for the burn-rate delta.
//
// All divisions are guarded; undefined quantities come back as nil
// pointers rather than zeroes so the scoring engine can tell "no data"
// from "zero". Recomputed fresh on every call, never cached here.
func Metrics(txs []core.Transaction, w core.TimeWindow, prevTxs []core.Transaction, prev core.TimeWindow, budget core.BudgetContext) core.FinancialMetrics {
	income, spending, needs, wants := windowTotals(txs, w)

	m := core.FinancialMetrics{
		TotalIncome:   toFloat(income),
		TotalSpending: toFloat(spending),
	}
	m.NetCashFlow = m.TotalIncome - m.TotalSpending

	if spending.IsPositive() {
		needsPct := toFloat(needs) / m.TotalSpending * 100
		wantsPct := toFloat(wants) / m.TotalSpending * 100
		m.NeedsPercent = &needsPct
		m.WantsPercent = &wantsPct
	}

	days := w.Days()
	if days < 1 {
		days = 1
	}
	m.AverageDailySpending = m.TotalSpending / float64(days)

	if budget.HasBudget() && m.AverageDailySpending > 0 {
		spent := spending
		if budget.Spent != nil {
			spent = *budget.Spent
		}
		remaining := toFloat(budget.Amount.Sub(spent))
		runway := remaining / m.AverageDailySpending
		m.RunwayDays = &runway
	}

	_, prevSpending, _, _ := windowTotals(prevTxs, prev)
	prevDays := prev.Days()
	if prevDays < 1 {
		prevDays = 1
	}
	prevAvg := toFloat(prevSpending) / float64(prevDays)
	if prevAvg > 0 {
		delta := (m.AverageDailySpending - prevAvg) / prevAvg * 100
		m.BurnRateDelta = &delta
	}

	return m
}

// windowTotals sums income, spending and the needs/wants split for the
// transactions inside the window, each rounded to cents.
func windowTotals(txs []core.Transaction, w core.TimeWindow) (income, spending, needs, wants decimal.Decimal) {
	income, spending = decimal.Zero, decimal.Zero
	needs, wants = decimal.Zero, decimal.Zero

	for _, t := range txs {
		if !t.In(w) {
			continue
		}
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			spending = spending.Add(t.Amount)
			switch t.Class {
			case core.Needs:
				needs = needs.Add(t.Amount)
			case core.Wants:
				wants = wants.Add(t.Amount)
			}
		}
	}

	return core.RoundCents(income), core.RoundCents(spending),
		core.RoundCents(needs), core.RoundCents(wants)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
