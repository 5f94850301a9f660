// Package window resolves reporting time windows from a reference date
// and a view mode.
package window

import (
	"time"

	"finpulse/internal/core"
)

// Resolve produces the closed date interval for the selected period.
//
// Monthly: the reference date's calendar month. Yearly: the reference
// date's calendar year. When the period is the current one or lies in
// the future, the end is capped at today; a far-future reference date
// therefore yields a window with Start after End, which callers treat
// as empty. Resolve never fails.
func Resolve(ref time.Time, mode core.ViewMode, today time.Time) core.TimeWindow {
	ref = core.DateOnly(ref)
	today = core.DateOnly(today)

	if mode == core.Yearly {
		start := core.NewDate(ref.Year(), 1, 1)
		end := core.NewDate(ref.Year(), 12, 31)
		if ref.Year() >= today.Year() {
			end = today
		}
		return core.TimeWindow{
			Start:       start,
			End:         end,
			Granularity: core.ByMonth,
			Label:       start.Format("2006"),
		}
	}

	start := core.NewDate(ref.Year(), int(ref.Month()), 1)
	end := lastDayOfMonth(ref.Year(), int(ref.Month()))
	if !start.Before(core.NewDate(today.Year(), int(today.Month()), 1)) {
		end = today
	}
	return core.TimeWindow{
		Start:       start,
		End:         end,
		Granularity: core.ByDay,
		Label:       start.Format("January 2006"),
	}
}

// Previous returns the prior comparable window: the preceding calendar
// month for monthly windows, the preceding calendar year otherwise.
// The previous window is never end-capped; it is fully in the past.
func Previous(mode core.ViewMode, w core.TimeWindow) core.TimeWindow {
	if mode == core.Yearly {
		year := w.Start.Year() - 1
		return core.TimeWindow{
			Start:       core.NewDate(year, 1, 1),
			End:         core.NewDate(year, 12, 31),
			Granularity: w.Granularity,
			Label:       core.NewDate(year, 1, 1).Format("2006"),
		}
	}

	year, month := w.Start.Year(), int(w.Start.Month())-1
	if month == 0 {
		month = 12
		year--
	}
	start := core.NewDate(year, month, 1)
	return core.TimeWindow{
		Start:       start,
		End:         lastDayOfMonth(year, month),
		Granularity: w.Granularity,
		Label:       start.Format("January 2006"),
	}
}

func lastDayOfMonth(year, month int) time.Time {
	// Day zero of the next month.
	return core.NewDate(year, month+1, 0)
}
