package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending limit over a date range. A zero End means the
// budget is open-ended.
type Budget struct {
	ID     string
	Amount decimal.Decimal
	Start  time.Time
	End    time.Time
}

// OverlapDays returns how many calendar days of the window fall inside
// the budget's active range.
func (b Budget) OverlapDays(w TimeWindow) int {
	if w.IsEmpty() {
		return 0
	}
	start := DateOnly(w.Start)
	end := DateOnly(w.End)
	if !b.Start.IsZero() && DateOnly(b.Start).After(start) {
		start = DateOnly(b.Start)
	}
	if !b.End.IsZero() && DateOnly(b.End).Before(end) {
		end = DateOnly(b.End)
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// ActiveBudget selects the budget with the largest overlap with the
// window. The first budget wins a tie. Returns false when no budget
// overlaps at all.
func ActiveBudget(budgets []Budget, w TimeWindow) (Budget, bool) {
	best := Budget{}
	bestDays := 0
	for _, b := range budgets {
		if days := b.OverlapDays(w); days > bestDays {
			best = b
			bestDays = days
		}
	}
	return best, bestDays > 0
}

// Context converts a selected budget into the pipeline's collaborator
// shape. Spent stays nil; the metrics layer resolves it from window
// spending when absent.
func (b Budget) Context() BudgetContext {
	amount := b.Amount
	return BudgetContext{Amount: &amount}
}
