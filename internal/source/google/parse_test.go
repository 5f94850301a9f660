package google

import (
	"testing"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

func TestParseTransactionRow(t *testing.T) {
	tests := []struct {
		name   string
		cols   []string
		wantOK bool
		check  func(t *testing.T, tx core.Transaction)
	}{
		{
			name:   "full row",
			cols:   []string{"2026-08-03", "expense", "42.50", "Groceries", "needs"},
			wantOK: true,
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Type != core.Expense {
					t.Errorf("Type = %q", tx.Type)
				}
				if !tx.Amount.Equal(decimal.RequireFromString("42.5")) {
					t.Errorf("Amount = %s", tx.Amount)
				}
				if tx.Class != core.Needs {
					t.Errorf("Class = %q", tx.Class)
				}
				if !tx.Date.Equal(core.NewDate(2026, 8, 3)) {
					t.Errorf("Date = %v", tx.Date)
				}
			},
		},
		{
			name:   "comma amount and locale date",
			cols:   []string{"03/08/2026", "income", "1200,99", "Salary"},
			wantOK: true,
			check: func(t *testing.T, tx core.Transaction) {
				if !tx.Amount.Equal(decimal.RequireFromString("1200.99")) {
					t.Errorf("Amount = %s", tx.Amount)
				}
				if !tx.Date.Equal(core.NewDate(2026, 8, 3)) {
					t.Errorf("Date = %v", tx.Date)
				}
			},
		},
		{
			name:   "mixed case type normalized",
			cols:   []string{"2026-08-03", "Transfer", "50", ""},
			wantOK: true,
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Type != core.Transfer {
					t.Errorf("Type = %q", tx.Type)
				}
			},
		},
		{
			name:   "unknown class dropped not fatal",
			cols:   []string{"2026-08-03", "expense", "10", "Food", "luxury"},
			wantOK: true,
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Class != "" {
					t.Errorf("Class = %q, want empty", tx.Class)
				}
			},
		},
		{name: "header row", cols: []string{"Date", "Type", "Amount", "Category"}},
		{name: "bad amount", cols: []string{"2026-08-03", "expense", "n/a", "Food"}},
		{name: "negative amount", cols: []string{"2026-08-03", "expense", "-5", "Food"}},
		{name: "unknown type", cols: []string{"2026-08-03", "refund", "5", "Food"}},
		{name: "too short", cols: []string{"2026-08-03", "expense"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, ok := parseTransactionRow(tt.cols)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.check != nil {
				tt.check(t, tx)
			}
		})
	}
}

func TestParseBudgetRow(t *testing.T) {
	b, ok := parseBudgetRow([]string{"1500", "2026-08-01", "2026-08-31"})
	if !ok {
		t.Fatal("full budget row should parse")
	}
	if !b.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Amount = %s", b.Amount)
	}
	if !b.Start.Equal(core.NewDate(2026, 8, 1)) || !b.End.Equal(core.NewDate(2026, 8, 31)) {
		t.Errorf("range = %v..%v", b.Start, b.End)
	}

	open, ok := parseBudgetRow([]string{"2000"})
	if !ok || !open.Start.IsZero() || !open.End.IsZero() {
		t.Errorf("amount-only budget should be open-ended, got %+v ok=%v", open, ok)
	}

	if _, ok := parseBudgetRow([]string{"Amount", "Start", "End"}); ok {
		t.Error("header row should not parse")
	}
	if _, ok := parseBudgetRow([]string{"0"}); ok {
		t.Error("zero budget should not parse")
	}
	if _, ok := parseBudgetRow([]string{"100", "yesterday"}); ok {
		t.Error("unparseable start date should reject the row")
	}
}
