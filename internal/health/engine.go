package health

import (
	"math"

	"finpulse/internal/core"
)

// Compute derives the five score cards and their unweighted mean from
// a metrics snapshot. The view mode only influences the no-budget
// runway approximation, where yearly income is normalized to a month.
//
// Every value is clamped into [0,100]; callers never observe anything
// outside that range, NaN or Inf. HasData=false is not an error, it
// marks "insufficient input to form an opinion" with a deterministic
// fallback value.
func Compute(m core.FinancialMetrics, budget core.BudgetContext, mode core.ViewMode) core.ScoreSet {
	s := core.ScoreSet{
		SpendingControl: spendingControl(m),
		SavingsRate:     savingsRate(m),
		NeedsVsWants:    needsVsWants(m),
		BudgetAdherence: budgetAdherence(m, budget),
		RunwayReadiness: runwayReadiness(m, budget, mode),
	}

	sum := 0
	for _, card := range s.Cards() {
		sum += card.Value
	}
	s.Overall = int(math.Round(float64(sum) / 5))
	return s
}

// spendingControl penalizes negative cash flow regardless of the
// discretionary ratio; with non-negative cash flow it scores the
// wants share directly. Missing wants data with money left over reads
// as zero discretionary spending.
func spendingControl(m core.FinancialMetrics) core.ScoreCard {
	if m.TotalIncome == 0 && m.TotalSpending == 0 {
		return core.ScoreCard{Value: 0, HasData: false}
	}

	if m.NetCashFlow < 0 {
		deficit := 100.0
		if m.TotalIncome > 0 {
			deficit = math.Abs(m.NetCashFlow) / m.TotalIncome * 100
		}
		raw := firstAtMost(deficitTable, deficit)
		if m.WantsPercent != nil && *m.WantsPercent > 40 {
			raw -= 10
		}
		return core.ScoreCard{Value: clampScore(raw), HasData: true}
	}

	wants := 0.0
	if m.WantsPercent != nil {
		wants = *m.WantsPercent
	}
	return core.ScoreCard{Value: clampScore(firstAtMost(wantsShareTable, wants)), HasData: true}
}

// savingsRate is undefined without income, even when spending exists.
func savingsRate(m core.FinancialMetrics) core.ScoreCard {
	if m.TotalIncome <= 0 {
		return core.ScoreCard{Value: 0, HasData: false}
	}
	rate := m.NetCashFlow / m.TotalIncome * 100
	return core.ScoreCard{Value: clampScore(firstAtLeast(savingsRateTable, rate)), HasData: true}
}

// needsVsWants reports a computed score of exactly zero as "no data".
// That asymmetry matches the shipped behavior and is pinned by tests;
// do not fold it into the regular clamping path.
func needsVsWants(m core.FinancialMetrics) core.ScoreCard {
	if m.TotalSpending <= 0 || m.NeedsPercent == nil {
		return core.ScoreCard{Value: 0, HasData: false}
	}
	value := clampScore(firstAtLeast(needsShareTable, *m.NeedsPercent))
	return core.ScoreCard{Value: value, HasData: value > 0}
}

func budgetAdherence(m core.FinancialMetrics, budget core.BudgetContext) core.ScoreCard {
	if !budget.HasBudget() {
		return core.ScoreCard{Value: 0, HasData: false}
	}
	utilization := spendForBudget(m, budget) / budgetAmount(budget)
	return core.ScoreCard{Value: clampScore(firstAtMost(utilizationTable, utilization)), HasData: true}
}

func runwayReadiness(m core.FinancialMetrics, budget core.BudgetContext, mode core.ViewMode) core.ScoreCard {
	if budget.HasBudget() {
		if m.RunwayDays != nil {
			return core.ScoreCard{Value: clampScore(runwayValue(*m.RunwayDays)), HasData: true}
		}
		// Approximate from how many days the budget covers at the
		// current spending rate.
		if m.AverageDailySpending == 0 {
			return core.ScoreCard{Value: 0, HasData: false}
		}
		days := budgetAmount(budget) / m.AverageDailySpending
		return core.ScoreCard{Value: clampScore(coverageValue(days, 80, 60)), HasData: true}
	}

	// No budget: approximate from monthly-equivalent income against the
	// average daily spend.
	hasData := m.TotalIncome > 0 && m.TotalSpending > 0
	if m.AverageDailySpending == 0 {
		return core.ScoreCard{Value: 0, HasData: hasData}
	}
	monthlyIncome := m.TotalIncome
	if mode == core.Yearly {
		monthlyIncome /= 12
	}
	days := monthlyIncome / m.AverageDailySpending
	return core.ScoreCard{Value: clampScore(coverageValue(days, 70, 50)), HasData: hasData}
}

func runwayValue(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r == 0:
		return 10
	default:
		return firstAtMost(runwayTable, r)
	}
}

// coverageValue maps "days covered" through the shared three-step
// approximation: a high plateau past 30 days, a middle plateau past 15,
// linear below.
func coverageValue(days, high, mid float64) float64 {
	switch {
	case days > 30:
		return high
	case days > 15:
		return mid
	case days > 0:
		return days * 2
	default:
		return 0
	}
}

func spendForBudget(m core.FinancialMetrics, budget core.BudgetContext) float64 {
	if budget.Spent != nil {
		f, _ := budget.Spent.Float64()
		return f
	}
	return m.TotalSpending
}

func budgetAmount(budget core.BudgetContext) float64 {
	f, _ := budget.Amount.Float64()
	return f
}

// clampScore enforces the one hard invariant of the engine: integer
// scores in [0,100].
func clampScore(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	v := int(math.Round(x))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
