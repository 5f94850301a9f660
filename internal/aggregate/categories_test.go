package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

func catExpense(amount, category string) core.Transaction {
	return core.Transaction{
		Type:     core.Expense,
		Amount:   decimal.RequireFromString(amount),
		Date:     core.NewDate(2026, 8, 10),
		Category: category,
	}
}

func augustWindow() core.TimeWindow {
	return core.TimeWindow{
		Start: core.NewDate(2026, 8, 1),
		End:   core.NewDate(2026, 8, 31),
	}
}

func TestCategories_TopFivePlusOtherIsTotalPreserving(t *testing.T) {
	txs := []core.Transaction{
		catExpense("700", "Rent"),
		catExpense("300", "Groceries"),
		catExpense("200", "Transport"),
		catExpense("150", "Dining"),
		catExpense("100", "Utilities"),
		catExpense("50", "Subscriptions"),
		catExpense("25", "Books"),
	}

	got := Categories(txs, augustWindow())

	if len(got.Top) != 5 {
		t.Fatalf("top count = %d, want 5", len(got.Top))
	}
	if got.Top[0].Name != "Rent" {
		t.Errorf("top category = %q, want Rent", got.Top[0].Name)
	}
	if got.Other == nil {
		t.Fatal("expected an Other entry for 7 categories")
	}
	if want := decimal.RequireFromString("75.00"); !got.Other.Amount.Equal(want) {
		t.Errorf("other = %s, want %s", got.Other.Amount, want)
	}

	sum := got.Other.Amount
	for _, e := range got.Top {
		sum = sum.Add(e.Amount)
	}
	if !sum.Equal(got.Total) {
		t.Errorf("sum(top)+other = %s, total = %s", sum, got.Total)
	}
}

func TestCategories_NoOtherForFiveOrFewer(t *testing.T) {
	txs := []core.Transaction{
		catExpense("10", "A"),
		catExpense("20", "B"),
	}

	got := Categories(txs, augustWindow())

	if got.Other != nil {
		t.Errorf("unexpected Other entry: %+v", got.Other)
	}
	if len(got.Top) != 2 {
		t.Errorf("top count = %d, want 2", len(got.Top))
	}
}

func TestCategories_TiesKeepFirstSeenOrder(t *testing.T) {
	txs := []core.Transaction{
		catExpense("50", "Zoo"),
		catExpense("50", "Aquarium"),
		catExpense("50", "Museum"),
	}

	got := Categories(txs, augustWindow())

	want := []string{"Zoo", "Aquarium", "Museum"}
	for i, name := range want {
		if got.Top[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, got.Top[i].Name, name)
		}
	}
}

func TestCategories_MissingCategoryDefaultsToUncategorized(t *testing.T) {
	txs := []core.Transaction{
		catExpense("30", ""),
		catExpense("20", "  "),
	}

	got := Categories(txs, augustWindow())

	if len(got.Top) != 1 || got.Top[0].Name != core.Uncategorized {
		t.Fatalf("got %+v, want single %q entry", got.Top, core.Uncategorized)
	}
	if want := decimal.RequireFromString("50.00"); !got.Top[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", got.Top[0].Amount, want)
	}
}

func TestCategories_IgnoresIncomeAndOutOfWindow(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: decimal.RequireFromString("1000"), Date: core.NewDate(2026, 8, 5)},
		catExpense("40", "Groceries"),
		{Type: core.Expense, Amount: decimal.RequireFromString("99"), Date: core.NewDate(2026, 9, 1), Category: "Groceries"},
	}

	got := Categories(txs, augustWindow())

	if want := decimal.RequireFromString("40.00"); !got.Total.Equal(want) {
		t.Errorf("total = %s, want %s", got.Total, want)
	}
}

func TestCategorySummary_Percent(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		amount string
		want   float64
	}{
		{name: "simple third", total: "300", amount: "100", want: 33.3},
		{name: "rounds half up", total: "1000", amount: "333.5", want: 33.4},
		{name: "full share", total: "50", amount: "50", want: 100},
		{name: "zero total is zero not NaN", total: "0", amount: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := core.CategorySummary{Total: decimal.RequireFromString(tt.total)}
			got := s.Percent(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("Percent(%s/%s) = %v, want %v", tt.amount, tt.total, got, tt.want)
			}
		})
	}
}
