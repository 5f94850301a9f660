package http

import (
	"github.com/shopspring/decimal"

	"finpulse/internal/core"
	"finpulse/internal/report"
)

// Response DTOs. Monetary values go out as decimal strings; derived
// ratios and scores as numbers. Pointer fields mirror the "undefined"
// sentinels of the metrics snapshot and serialize as JSON null.

type windowDTO struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Label       string `json:"label"`
	Granularity string `json:"granularity"`
	Days        int    `json:"days"`
}

type bucketDTO struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

type categoryDTO struct {
	Name    string  `json:"name"`
	Amount  string  `json:"amount"`
	Percent float64 `json:"percent"`
}

type categoriesDTO struct {
	Top   []categoryDTO `json:"top"`
	Other *categoryDTO  `json:"other,omitempty"`
	Total string        `json:"total"`
}

type metricsDTO struct {
	TotalIncome          float64  `json:"total_income"`
	TotalSpending        float64  `json:"total_spending"`
	NetCashFlow          float64  `json:"net_cash_flow"`
	AverageDailySpending float64  `json:"average_daily_spending"`
	NeedsPercent         *float64 `json:"needs_percent"`
	WantsPercent         *float64 `json:"wants_percent"`
	RunwayDays           *float64 `json:"runway_days"`
	BurnRateDelta        *float64 `json:"burn_rate_delta"`
}

type budgetDTO struct {
	Amount     *string  `json:"amount"`
	Spent      *string  `json:"spent"`
	Percentage *float64 `json:"percentage"`
}

type scoreDTO struct {
	Value   int  `json:"value"`
	HasData bool `json:"has_data"`
}

type scoresDTO struct {
	SpendingControl scoreDTO `json:"spending_control"`
	SavingsRate     scoreDTO `json:"savings_rate"`
	NeedsVsWants    scoreDTO `json:"needs_vs_wants"`
	BudgetAdherence scoreDTO `json:"budget_adherence"`
	RunwayReadiness scoreDTO `json:"runway_readiness"`
	Overall         int      `json:"overall"`
}

type narrativeDTO struct {
	Tone    string `json:"tone"`
	Preface string `json:"preface"`
	Body    string `json:"body"`
}

type reportResponse struct {
	Window     windowDTO     `json:"window"`
	Previous   windowDTO     `json:"previous"`
	Series     []bucketDTO   `json:"series"`
	Categories categoriesDTO `json:"categories"`
	Metrics    metricsDTO    `json:"metrics"`
	Budget     budgetDTO     `json:"budget"`
	Scores     scoresDTO     `json:"scores"`
	Narrative  narrativeDTO  `json:"narrative"`
}

type seriesResponse struct {
	Window windowDTO   `json:"window"`
	Series []bucketDTO `json:"series"`
}

type categoriesResponse struct {
	Window     windowDTO     `json:"window"`
	Categories categoriesDTO `json:"categories"`
}

type transactionCreatedResponse struct {
	Ref string `json:"ref"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func buildWindow(w core.TimeWindow) windowDTO {
	return windowDTO{
		Start:       w.Start.Format(requestDateLayout),
		End:         w.End.Format(requestDateLayout),
		Label:       w.Label,
		Granularity: string(w.Granularity),
		Days:        w.Days(),
	}
}

func buildSeries(series core.BucketedSeries) []bucketDTO {
	out := make([]bucketDTO, 0, len(series))
	for _, b := range series {
		out = append(out, bucketDTO{
			Key:     b.Key,
			Label:   b.Label,
			Income:  b.Income.StringFixed(2),
			Expense: b.Expense.StringFixed(2),
			Net:     b.Net.StringFixed(2),
		})
	}
	return out
}

func buildCategories(s core.CategorySummary) categoriesDTO {
	dto := categoriesDTO{
		Top:   make([]categoryDTO, 0, len(s.Top)),
		Total: s.Total.StringFixed(2),
	}
	for _, c := range s.Top {
		dto.Top = append(dto.Top, categoryDTO{
			Name:    c.Name,
			Amount:  c.Amount.StringFixed(2),
			Percent: s.Percent(c.Amount),
		})
	}
	if s.Other != nil {
		dto.Other = &categoryDTO{
			Name:    s.Other.Name,
			Amount:  s.Other.Amount.StringFixed(2),
			Percent: s.Percent(s.Other.Amount),
		}
	}
	return dto
}

func buildMetrics(m core.FinancialMetrics) metricsDTO {
	return metricsDTO{
		TotalIncome:          m.TotalIncome,
		TotalSpending:        m.TotalSpending,
		NetCashFlow:          m.NetCashFlow,
		AverageDailySpending: m.AverageDailySpending,
		NeedsPercent:         m.NeedsPercent,
		WantsPercent:         m.WantsPercent,
		RunwayDays:           m.RunwayDays,
		BurnRateDelta:        m.BurnRateDelta,
	}
}

func buildBudget(b core.BudgetContext) budgetDTO {
	dto := budgetDTO{Percentage: b.Percentage}
	dto.Amount = decimalString(b.Amount)
	dto.Spent = decimalString(b.Spent)
	return dto
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func buildScores(s core.ScoreSet) scoresDTO {
	card := func(c core.ScoreCard) scoreDTO {
		return scoreDTO{Value: c.Value, HasData: c.HasData}
	}
	return scoresDTO{
		SpendingControl: card(s.SpendingControl),
		SavingsRate:     card(s.SavingsRate),
		NeedsVsWants:    card(s.NeedsVsWants),
		BudgetAdherence: card(s.BudgetAdherence),
		RunwayReadiness: card(s.RunwayReadiness),
		Overall:         s.Overall,
	}
}

func buildReport(r report.Report) reportResponse {
	return reportResponse{
		Window:     buildWindow(r.Window),
		Previous:   buildWindow(r.Previous),
		Series:     buildSeries(r.Series),
		Categories: buildCategories(r.Categories),
		Metrics:    buildMetrics(r.Metrics),
		Budget:     buildBudget(r.Budget),
		Scores:     buildScores(r.Scores),
		Narrative: narrativeDTO{
			Tone:    string(r.Narrative.Tone),
			Preface: r.Narrative.Preface,
			Body:    r.Narrative.Body,
		},
	}
}
