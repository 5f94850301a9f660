package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

func expense(amount string, date time.Time) core.Transaction {
	return core.Transaction{
		Type:     core.Expense,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Category: "Groceries",
	}
}

func income(amount string, date time.Time) core.Transaction {
	return core.Transaction{
		Type:   core.Income,
		Amount: decimal.RequireFromString(amount),
		Date:   date,
	}
}

func TestSeries_DailyCoversEveryDayWithNoGaps(t *testing.T) {
	w := core.TimeWindow{
		Start: core.NewDate(2026, 8, 1),
		End:   core.NewDate(2026, 8, 30),
	}

	got := Series(nil, w, core.ByDay)

	if len(got) != 30 {
		t.Fatalf("bucket count = %d, want 30", len(got))
	}
	for i, b := range got {
		wantKey := core.NewDate(2026, 8, i+1).Format("2006-01-02")
		if b.Key != wantKey {
			t.Errorf("bucket %d key = %q, want %q", i, b.Key, wantKey)
		}
		if !b.Income.IsZero() || !b.Expense.IsZero() || !b.Net.IsZero() {
			t.Errorf("bucket %q not zeroed: %+v", b.Key, b)
		}
	}
}

func TestSeries_MonthlyBucketsAcrossYear(t *testing.T) {
	w := core.TimeWindow{
		Start: core.NewDate(2025, 1, 1),
		End:   core.NewDate(2025, 12, 31),
	}
	txs := []core.Transaction{
		income("5000", core.NewDate(2025, 1, 15)),
		expense("120.50", core.NewDate(2025, 1, 20)),
		expense("80.25", core.NewDate(2025, 3, 2)),
		expense("19.75", core.NewDate(2025, 3, 28)),
	}

	got := Series(txs, w, core.ByMonth)

	if len(got) != 12 {
		t.Fatalf("bucket count = %d, want 12", len(got))
	}
	if got[0].Key != "2025-01" || got[11].Key != "2025-12" {
		t.Fatalf("keys not chronological: first %q last %q", got[0].Key, got[11].Key)
	}
	if want := decimal.RequireFromString("4879.50"); !got[0].Net.Equal(want) {
		t.Errorf("january net = %s, want %s", got[0].Net, want)
	}
	if want := decimal.RequireFromString("100.00"); !got[2].Expense.Equal(want) {
		t.Errorf("march expense = %s, want %s", got[2].Expense, want)
	}
	for i := 4; i < 12; i++ {
		if !got[i].Net.IsZero() {
			t.Errorf("bucket %q expected zero activity", got[i].Key)
		}
	}
}

func TestSeries_WeeklyChunksFromWindowStart(t *testing.T) {
	w := core.TimeWindow{
		Start: core.NewDate(2026, 6, 1),
		End:   core.NewDate(2026, 6, 30),
	}
	txs := []core.Transaction{
		expense("10", core.NewDate(2026, 6, 1)),  // chunk 0
		expense("20", core.NewDate(2026, 6, 7)),  // chunk 0, last day
		expense("30", core.NewDate(2026, 6, 8)),  // chunk 1, first day
		expense("40", core.NewDate(2026, 6, 29)), // chunk 4, short tail
	}

	got := Series(txs, w, core.ByWeek)

	// 30 days: four full 7-day chunks plus a 2-day tail.
	if len(got) != 5 {
		t.Fatalf("bucket count = %d, want 5", len(got))
	}
	if want := decimal.RequireFromString("30.00"); !got[0].Expense.Equal(want) {
		t.Errorf("chunk 0 expense = %s, want %s", got[0].Expense, want)
	}
	if want := decimal.RequireFromString("30.00"); !got[1].Expense.Equal(want) {
		t.Errorf("chunk 1 expense = %s, want %s", got[1].Expense, want)
	}
	if want := decimal.RequireFromString("40.00"); !got[4].Expense.Equal(want) {
		t.Errorf("tail chunk expense = %s, want %s", got[4].Expense, want)
	}
}

func TestSeries_DropsAndIgnores(t *testing.T) {
	w := core.TimeWindow{
		Start: core.NewDate(2026, 5, 1),
		End:   core.NewDate(2026, 5, 31),
	}
	undated := core.Transaction{Type: core.Expense, Amount: decimal.RequireFromString("99")}
	posted := core.Transaction{
		Type:     core.Expense,
		Amount:   decimal.RequireFromString("15"),
		PostedAt: core.NewDate(2026, 5, 10), // no Date, PostedAt used as fallback
	}
	transfer := core.Transaction{
		Type:   core.Transfer,
		Amount: decimal.RequireFromString("500"),
		Date:   core.NewDate(2026, 5, 10),
	}
	outside := expense("77", core.NewDate(2026, 6, 1))

	got := Series([]core.Transaction{undated, posted, transfer, outside}, w, core.ByDay)

	total := decimal.Zero
	for _, b := range got {
		total = total.Add(b.Expense)
	}
	if want := decimal.RequireFromString("15.00"); !total.Equal(want) {
		t.Errorf("window expense total = %s, want %s", total, want)
	}
}

func TestSeries_EmptyWindow(t *testing.T) {
	w := core.TimeWindow{
		Start: core.NewDate(2027, 4, 1),
		End:   core.NewDate(2026, 8, 30),
	}

	got := Series([]core.Transaction{expense("10", core.NewDate(2026, 8, 1))}, w, core.ByDay)

	if len(got) != 0 {
		t.Fatalf("expected no buckets for empty window, got %d", len(got))
	}
}

func TestSeries_BoundaryDatesInclusive(t *testing.T) {
	w := core.TimeWindow{
		Start: core.NewDate(2026, 7, 1),
		End:   core.NewDate(2026, 7, 31),
	}
	txs := []core.Transaction{
		expense("1", core.NewDate(2026, 7, 1)),
		expense("2", core.NewDate(2026, 7, 31)),
	}

	got := Series(txs, w, core.ByDay)

	if !got[0].Expense.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("start-day bucket = %s, want 1.00", got[0].Expense)
	}
	if !got[len(got)-1].Expense.Equal(decimal.RequireFromString("2.00")) {
		t.Errorf("end-day bucket = %s, want 2.00", got[len(got)-1].Expense)
	}
}
