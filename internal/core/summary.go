package core

import "github.com/shopspring/decimal"

// Bucket is one time-unit slice of a window with summed activity.
// Net is always Income minus Expense, rounded to cents.
type Bucket struct {
	Key     string // machine-sortable, e.g. "2026-08" or "2026-08-03"
	Label   string // human designation, e.g. "Aug" or "Aug 3"
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// BucketedSeries is chronologically ordered, one entry per calendar
// unit in the window with no gaps.
type BucketedSeries []Bucket

// CategoryAmount is an expense total for a single category.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// OtherCategory is the synthetic roll-up bucket for everything beyond
// the ranked top entries.
const OtherCategory = "Other"

// Uncategorized is assigned to expenses with no category.
const Uncategorized = "Uncategorized"

// CategorySummary ranks expense categories within a window. Top holds
// at most the five largest categories; Other, when present, sums the
// remainder so that sum(Top)+Other always equals Total.
type CategorySummary struct {
	Top   []CategoryAmount
	Other *CategoryAmount
	Total decimal.Decimal
}

// Percent returns the share of Total for an amount, as a percentage
// with one decimal place. Zero total yields zero, never NaN.
func (s CategorySummary) Percent(amount decimal.Decimal) float64 {
	if s.Total.IsZero() {
		return 0
	}
	tenths := amount.Mul(decimal.NewFromInt(1000)).Div(s.Total).Round(0)
	f, _ := tenths.Div(decimal.NewFromInt(10)).Float64()
	return f
}

// FinancialMetrics is the scalar snapshot derived from the aggregates
// of the active window. Pointer fields are nil when the underlying
// quantity is undefined (no spending, no budget, no prior period).
type FinancialMetrics struct {
	TotalIncome          float64
	TotalSpending        float64
	NetCashFlow          float64
	AverageDailySpending float64
	NeedsPercent         *float64
	WantsPercent         *float64
	RunwayDays           *float64
	BurnRateDelta        *float64
}

// BudgetContext is the optional collaborator data from the budget
// store. Nil Amount means no budget configured.
type BudgetContext struct {
	Amount     *decimal.Decimal
	Spent      *decimal.Decimal
	Percentage *float64
}

// HasBudget reports whether a positive budget amount is configured.
func (b BudgetContext) HasBudget() bool {
	return b.Amount != nil && b.Amount.IsPositive()
}

// ScoreCard is a single bounded health score. HasData=false signals
// "not enough data to form an opinion"; Value is still a deterministic
// fallback (typically 0) so the card never carries garbage.
type ScoreCard struct {
	Value   int
	HasData bool
}

// ScoreSet carries the five sub-scores plus their unweighted mean.
type ScoreSet struct {
	SpendingControl ScoreCard
	SavingsRate     ScoreCard
	NeedsVsWants    ScoreCard
	BudgetAdherence ScoreCard
	RunwayReadiness ScoreCard
	Overall         int
}

// Cards returns the five sub-scores in their fixed display order.
func (s ScoreSet) Cards() []ScoreCard {
	return []ScoreCard{
		s.SpendingControl,
		s.SavingsRate,
		s.NeedsVsWants,
		s.BudgetAdherence,
		s.RunwayReadiness,
	}
}

const (
	ToneCelebratory Tone = "celebratory"
	ToneBalanced    Tone = "balanced"
	ToneCautious    Tone = "cautious"
	ToneCritical    Tone = "critical"
)

// Tone is the qualitative label summarizing overall health.
type Tone string

// Insight is one sentence of the generated narrative. Insights have no
// identity; they exist only for the duration of a computation cycle.
type Insight struct {
	Text string
}

// Narrative is the assembled guidance: a tone, its fixed one-line
// preface, and the body built from the ordered insight sentences.
type Narrative struct {
	Tone    Tone
	Preface string
	Body    string
}
