// Package health converts a metrics snapshot into five bounded health
// scores, an overall score and a qualitative tone.
//
// The piecewise-linear scoring curves are expressed as ordered
// breakpoint tables evaluated top-down, so each band is auditable and
// testable on its own instead of living inside nested conditionals.
package health

import "math"

// breakpoint is one band of a piecewise-linear curve. limit bounds the
// driver value; eval computes the raw (unclamped) score inside the band.
type breakpoint struct {
	limit float64
	eval  func(x float64) float64
}

// firstAtMost walks the table top-down and evaluates the first band
// whose limit the value does not exceed. Tables end with a +Inf band.
func firstAtMost(table []breakpoint, x float64) float64 {
	for _, b := range table {
		if x <= b.limit {
			return b.eval(x)
		}
	}
	return 0
}

// firstAtLeast walks the table top-down and evaluates the first band
// whose limit the value meets or exceeds. Tables end with a -Inf band.
func firstAtLeast(table []breakpoint, x float64) float64 {
	for _, b := range table {
		if x >= b.limit {
			return b.eval(x)
		}
	}
	return 0
}

// wantsShareTable scores spending control from the discretionary share
// of spending when cash flow is non-negative.
var wantsShareTable = []breakpoint{
	{25, func(w float64) float64 { return 85 + (25-w)*0.6 }},
	{35, func(w float64) float64 { return 70 + (35-w)*1.5 }},
	{45, func(w float64) float64 { return 50 + (45-w)*2 }},
	{55, func(w float64) float64 { return 30 + (55-w)*2 }},
	{math.Inf(1), func(w float64) float64 { return math.Max(0, 30-(w-55)*1.5) }},
}

// deficitTable scores spending control from the deficit as a percent
// of income when cash flow is negative.
var deficitTable = []breakpoint{
	{15, func(d float64) float64 { return 30 + (15-d)*1.33 }},
	{30, func(d float64) float64 { return 20 + (30-d)*0.67 }},
	{math.Inf(1), func(d float64) float64 { return math.Max(0, 20-(d-30)*0.5) }},
}

// savingsRateTable scores the savings rate (net cash flow as a percent
// of income), including the negative-rate bands.
var savingsRateTable = []breakpoint{
	{30, func(r float64) float64 { return 90 + (r-30)*0.33 }},
	{20, func(r float64) float64 { return 80 + (r - 20) }},
	{10, func(r float64) float64 { return 65 + (r-10)*1.5 }},
	{5, func(r float64) float64 { return 50 + (r-5)*3 }},
	{0, func(r float64) float64 { return 30 + r*4 }},
	{-10, func(r float64) float64 { return 30 + r*2 }},
	{-25, func(r float64) float64 { return 10 + (r+10)*1.33 }},
	{math.Inf(-1), func(r float64) float64 { return math.Max(0, 10+(r+25)*0.4) }},
}

// needsShareTable scores the needs share of spending. Both very high
// and very low needs shares are penalized; the sweet spot sits in the
// 60-70 band.
var needsShareTable = []breakpoint{
	{75, func(n float64) float64 { return 60 + (n-75)*0.4 }},
	{70, func(n float64) float64 { return 75 + (n - 70) }},
	{60, func(n float64) float64 { return 85 + (n-60)*1.5 }},
	{50, func(n float64) float64 { return 60 + (n-50)*2.5 }},
	{40, func(n float64) float64 { return 30 + (n-40)*3 }},
	{math.Inf(-1), func(n float64) float64 { return math.Max(0, n*0.75) }},
}

// utilizationTable scores budget adherence from spend over budget.
var utilizationTable = []breakpoint{
	{0.70, func(u float64) float64 { return 90 + (0.70-u)*14.3 }},
	{0.85, func(u float64) float64 { return 80 + (0.85-u)*66.7 }},
	{1.00, func(u float64) float64 { return 70 + (1.00-u)*66.7 }},
	{1.10, func(u float64) float64 { return 60 - (u-1.00)*100 }},
	{1.25, func(u float64) float64 { return 50 - (u-1.10)*133.3 }},
	{1.50, func(u float64) float64 { return 30 - (u-1.25)*80 }},
	{math.Inf(1), func(u float64) float64 { return math.Max(0, 10-(u-1.50)*20) }},
}

// runwayTable scores runway readiness from days of runway left. The
// negative and zero cases are handled before the table applies.
var runwayTable = []breakpoint{
	{7, func(r float64) float64 { return r * 2 }},
	{15, func(r float64) float64 { return 20 + (r-7)*3 }},
	{30, func(r float64) float64 { return 50 + (r-15)*2 }},
	{math.Inf(1), func(r float64) float64 { return 80 + math.Min(20, (r-30)*0.67) }},
}
