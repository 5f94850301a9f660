// Package insight composes the natural-language guidance from a
// metrics snapshot. Sentence order is fixed by priority: critical
// conditions (deficits, budget overruns) always outrank positive
// framing.
package insight

import (
	"fmt"
	"math"
	"strings"

	"finpulse/internal/core"
	"finpulse/internal/health"
)

// CurrencyFormatter renders a monetary value for display. The caller
// owns locale and symbol choices; the generator only supplies numbers.
type CurrencyFormatter interface {
	Format(amount float64) string
}

// burnShiftThreshold is the minimum absolute burn-rate delta (percent)
// worth a sentence of its own.
const burnShiftThreshold = 8

const noDataMessage = "There is no activity recorded for this period yet, so there is nothing to analyze."

// Generator builds narratives. Zero-value is not usable; construct via
// NewGenerator.
type Generator struct {
	currency CurrencyFormatter
}

func NewGenerator(currency CurrencyFormatter) *Generator {
	if currency == nil {
		currency = plainFormatter{}
	}
	return &Generator{currency: currency}
}

// plainFormatter is the fallback when no locale formatter is supplied.
type plainFormatter struct{}

func (plainFormatter) Format(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// Generate produces the tone, its fixed preface and the narrative body
// for the given snapshot. Pure: identical inputs yield the identical
// narrative.
func (g *Generator) Generate(m core.FinancialMetrics, budget core.BudgetContext, overall int) core.Narrative {
	tone := health.Classify(overall)
	body := make([]string, 0, 4)
	for _, ins := range g.Sentences(m, budget) {
		body = append(body, ins.Text)
	}
	return core.Narrative{
		Tone:    tone,
		Preface: health.Preface(tone),
		Body:    strings.Join(body, " "),
	}
}

// Sentences returns the ordered insight list. With no activity at all
// the single no-data sentence is returned and every other rule is
// skipped.
func (g *Generator) Sentences(m core.FinancialMetrics, budget core.BudgetContext) []core.Insight {
	if m.TotalIncome == 0 && m.TotalSpending == 0 {
		return []core.Insight{{Text: noDataMessage}}
	}

	out := []core.Insight{{Text: g.cashFlowSentence(m)}}

	// Discretionary commentary is suppressed entirely while in deficit:
	// never praise discipline with a negative cash flow.
	if m.NetCashFlow >= 0 && m.WantsPercent != nil {
		if s := wantsSentence(*m.WantsPercent); s != "" {
			out = append(out, core.Insight{Text: s})
		}
	}

	out = append(out, core.Insight{Text: g.budgetSentence(m, budget)})

	if m.BurnRateDelta != nil && math.Abs(*m.BurnRateDelta) >= burnShiftThreshold {
		out = append(out, core.Insight{Text: burnSentence(*m.BurnRateDelta)})
	}

	return out
}

// cashFlowSentence is mandatory and branches on the sign and magnitude
// of the net cash flow, using the same deficit bands as the spending
// control score.
func (g *Generator) cashFlowSentence(m core.FinancialMetrics) string {
	switch {
	case m.NetCashFlow < 0:
		deficit := 100.0
		if m.TotalIncome > 0 {
			deficit = math.Abs(m.NetCashFlow) / m.TotalIncome * 100
		}
		gap := g.currency.Format(math.Abs(m.NetCashFlow))
		switch {
		case deficit > 30:
			return fmt.Sprintf("You spent %s more than you earned this period, a shortfall of over 30%% of income that needs urgent attention.", gap)
		case deficit > 15:
			return fmt.Sprintf("You overspent by %s this period, a significant dent in your income worth reining in.", gap)
		default:
			return fmt.Sprintf("You ended the period %s short of breaking even, a small gap that is easy to close.", gap)
		}
	case m.NetCashFlow == 0:
		return "Your income and spending balanced out exactly this period."
	default:
		return fmt.Sprintf("You kept %s of your income this period after covering all spending.", g.currency.Format(m.NetCashFlow))
	}
}

// wantsSentence comments on the discretionary share; the middle range
// passes without comment.
func wantsSentence(wants float64) string {
	switch {
	case wants > 40:
		return fmt.Sprintf("Discretionary purchases took %.0f%% of your spending; trimming wants would free up the most room.", wants)
	case wants <= 25:
		return fmt.Sprintf("Only %.0f%% of spending went to wants, which is a disciplined split.", wants)
	default:
		return ""
	}
}

// budgetSentence is mandatory: it either nudges the user to configure
// a budget, or reports runway when known, or falls back to utilization.
func (g *Generator) budgetSentence(m core.FinancialMetrics, budget core.BudgetContext) string {
	if !budget.HasBudget() {
		return "Set a monthly budget to unlock adherence tracking and runway projections."
	}

	if m.RunwayDays != nil {
		r := *m.RunwayDays
		switch {
		case r < 0:
			return "Your budget is already exceeded; spending has overrun the limit you set."
		case r == 0:
			return "You are exactly at your budget limit with nothing left to spend."
		case r < 7:
			return fmt.Sprintf("At the current pace your budget runs out in about %d days.", int(r))
		case r < 15:
			return fmt.Sprintf("Your budget covers roughly %d more days; watch the pace.", int(r))
		default:
			return fmt.Sprintf("Your budget is projected to last about %d more days at the current rate.", int(r))
		}
	}

	utilization := utilizationOf(m, budget)
	switch {
	case utilization >= 1.5:
		return fmt.Sprintf("You have spent %.0f%% of your budget, far past the limit.", utilization*100)
	case utilization >= 1.2:
		return fmt.Sprintf("You have spent %.0f%% of your budget, well over the limit.", utilization*100)
	case utilization >= 1.0:
		return fmt.Sprintf("You have used %.0f%% of your budget and crossed the limit.", utilization*100)
	case utilization >= 0.8:
		return fmt.Sprintf("You have used %.0f%% of your budget; the remainder calls for care.", utilization*100)
	case utilization < 0.6:
		return fmt.Sprintf("You have used only %.0f%% of your budget, leaving comfortable headroom.", utilization*100)
	default:
		return fmt.Sprintf("You have used %.0f%% of your budget and are tracking to plan.", utilization*100)
	}
}

func burnSentence(delta float64) string {
	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	return fmt.Sprintf("Your average daily spending is %s %.0f%% versus the prior period.", direction, math.Abs(delta))
}

func utilizationOf(m core.FinancialMetrics, budget core.BudgetContext) float64 {
	amount, _ := budget.Amount.Float64()
	spent := m.TotalSpending
	if budget.Spent != nil {
		spent, _ = budget.Spent.Float64()
	}
	return spent / amount
}
