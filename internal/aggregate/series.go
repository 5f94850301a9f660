// Package aggregate turns raw transactions into the bucketed series,
// category rankings and scalar metrics the scoring engine consumes.
// Everything here is a pure function: same inputs, same outputs,
// including rounding.
package aggregate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

const weekDays = 7

// Series partitions the transactions falling inside the window into
// ordered time buckets and sums income and expense per bucket.
//
// Every calendar unit in the window is represented even with zero
// activity, ordering is chronological ascending, and bucket sums are
// rounded to cents before the net is derived. Records with no
// effective date are dropped silently. Transfers touch no bucket.
func Series(txs []core.Transaction, w core.TimeWindow, g core.Granularity) core.BucketedSeries {
	if w.IsEmpty() {
		return core.BucketedSeries{}
	}

	buckets, index := prefill(w, g)

	for _, t := range txs {
		if !t.In(w) {
			continue
		}
		i, ok := index[bucketKey(t.EffectiveDate(), w, g)]
		if !ok {
			continue
		}
		switch t.Type {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(t.Amount)
		case core.Expense:
			buckets[i].Expense = buckets[i].Expense.Add(t.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Income = core.RoundCents(buckets[i].Income)
		buckets[i].Expense = core.RoundCents(buckets[i].Expense)
		buckets[i].Net = buckets[i].Income.Sub(buckets[i].Expense)
	}

	return buckets
}

// prefill creates one zeroed bucket per calendar unit in the window and
// an index from bucket key to position.
func prefill(w core.TimeWindow, g core.Granularity) (core.BucketedSeries, map[string]int) {
	var buckets core.BucketedSeries
	index := make(map[string]int)

	start := core.DateOnly(w.Start)
	end := core.DateOnly(w.End)

	switch g {
	case core.ByMonth:
		for cur := core.NewDate(start.Year(), int(start.Month()), 1); !cur.After(end); cur = cur.AddDate(0, 1, 0) {
			appendBucket(&buckets, index, cur.Format("2006-01"), cur.Format("Jan"))
		}
	case core.ByWeek:
		for chunk := 0; ; chunk++ {
			cs := start.AddDate(0, 0, chunk*weekDays)
			if cs.After(end) {
				break
			}
			ce := cs.AddDate(0, 0, weekDays-1)
			if ce.After(end) {
				ce = end // final chunk may be shorter than 7 days
			}
			label := fmt.Sprintf("%s - %s", cs.Format("Jan 2"), ce.Format("Jan 2"))
			appendBucket(&buckets, index, cs.Format("2006-01-02"), label)
		}
	default: // day
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
			appendBucket(&buckets, index, cur.Format("2006-01-02"), cur.Format("Jan 2"))
		}
	}

	return buckets, index
}

func appendBucket(buckets *core.BucketedSeries, index map[string]int, key, label string) {
	index[key] = len(*buckets)
	*buckets = append(*buckets, core.Bucket{
		Key:     key,
		Label:   label,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Net:     decimal.Zero,
	})
}

// bucketKey maps a date to the key of the bucket that owns it.
func bucketKey(d time.Time, w core.TimeWindow, g core.Granularity) string {
	d = core.DateOnly(d)
	switch g {
	case core.ByMonth:
		return d.Format("2006-01")
	case core.ByWeek:
		days := int(d.Sub(core.DateOnly(w.Start)).Hours() / 24)
		chunk := days / weekDays
		return core.DateOnly(w.Start).AddDate(0, 0, chunk*weekDays).Format("2006-01-02")
	default:
		return d.Format("2006-01-02")
	}
}
