package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finpulse/internal/cache"
	"finpulse/internal/core"
	"finpulse/internal/insight"
)

type fakeStore struct {
	txs       []core.Transaction
	budgets   []core.Budget
	listCalls int
	appendErr error
}

func (f *fakeStore) ListTransactions(_ context.Context, start, end time.Time) ([]core.Transaction, error) {
	f.listCalls++
	w := core.TimeWindow{Start: start, End: end}
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.In(w) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) Append(_ context.Context, tx core.Transaction) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.txs = append(f.txs, tx)
	return "fake:1", nil
}

func (f *fakeStore) ListBudgets(_ context.Context) ([]core.Budget, error) {
	return f.budgets, nil
}

type fakePublisher struct {
	refs []string
	err  error
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, ref, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.refs = append(f.refs, ref)
	return nil
}

type plainCurrency struct{}

func (plainCurrency) Format(amount float64) string { return decimal.NewFromFloat(amount).StringFixed(2) }

func fixedClock() func() time.Time {
	return func() time.Time { return core.NewDate(2026, 8, 30) }
}

func seedTx(y, m, d int, typ core.TransactionType, amount string, category string, class core.ExpenseClass) core.Transaction {
	a, _ := core.ParseAmount(amount)
	return core.Transaction{
		ID: category + amount, Type: typ, Amount: a,
		Date: core.NewDate(y, m, d), Category: category, Class: class,
	}
}

func seededStore() *fakeStore {
	return &fakeStore{
		txs: []core.Transaction{
			seedTx(2026, 8, 1, core.Income, "3000", "Salary", ""),
			seedTx(2026, 8, 3, core.Expense, "900", "Rent", core.Needs),
			seedTx(2026, 8, 10, core.Expense, "400", "Groceries", core.Needs),
			seedTx(2026, 8, 15, core.Expense, "500", "Dining", core.Wants),
			seedTx(2026, 7, 12, core.Expense, "600", "Rent", core.Needs),
		},
		budgets: []core.Budget{{
			ID:     "aug",
			Amount: decimal.NewFromInt(2500),
			Start:  core.NewDate(2026, 8, 1),
			End:    core.NewDate(2026, 8, 31),
		}},
	}
}

func newTestService(store *fakeStore, opts ...Option) *Service {
	gen := insight.NewGenerator(plainCurrency{})
	opts = append([]Option{WithClock(fixedClock())}, opts...)
	return NewService(store, store, store, gen, opts...)
}

func TestService_ComputeEndToEnd(t *testing.T) {
	svc := newTestService(seededStore())

	r, err := svc.Compute(context.Background(), Request{RefDate: core.NewDate(2026, 8, 15)})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if r.Window.Label != "August 2026" {
		t.Errorf("window label = %q, want August 2026", r.Window.Label)
	}
	// Current month clips at today.
	if !r.Window.End.Equal(core.NewDate(2026, 8, 30)) {
		t.Errorf("window end = %v, want today", r.Window.End)
	}
	if len(r.Series) != 30 {
		t.Errorf("series has %d daily buckets, want 30", len(r.Series))
	}
	if r.Metrics.TotalIncome != 3000 || r.Metrics.TotalSpending != 1800 {
		t.Errorf("totals = %.0f / %.0f, want 3000 / 1800", r.Metrics.TotalIncome, r.Metrics.TotalSpending)
	}
	if !r.Budget.HasBudget() {
		t.Error("August budget should be active")
	}
	if r.Metrics.BurnRateDelta == nil {
		t.Error("July activity should yield a burn rate delta")
	}
	if r.Scores.Overall <= 0 {
		t.Errorf("overall = %d, want positive", r.Scores.Overall)
	}
	if r.Narrative.Body == "" || r.Narrative.Preface == "" {
		t.Error("narrative should be populated")
	}
	if len(r.Categories.Top) == 0 {
		t.Error("categories should be ranked")
	}
}

func TestService_DefaultsAndValidation(t *testing.T) {
	svc := newTestService(seededStore())
	ctx := context.Background()

	r, err := svc.Compute(ctx, Request{RefDate: core.NewDate(2026, 3, 1), View: core.Yearly})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if r.Window.Granularity != core.ByMonth {
		t.Errorf("yearly default granularity = %q, want month", r.Window.Granularity)
	}
	if r.Window.Label != "2026" {
		t.Errorf("label = %q, want 2026", r.Window.Label)
	}

	if _, err := svc.Compute(ctx, Request{View: "weekly"}); err == nil {
		t.Error("invalid view should error")
	}
	if _, err := svc.Compute(ctx, Request{Granularity: "hour"}); err == nil {
		t.Error("invalid granularity should error")
	}
}

func TestService_MemoizationAndDataChange(t *testing.T) {
	store := seededStore()
	c := cache.NewLRUCache[Report](8, time.Minute)
	svc := newTestService(store, WithCache(c))
	ctx := context.Background()
	req := Request{RefDate: core.NewDate(2026, 8, 15)}

	first, err := svc.Compute(ctx, req)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if c.Size() != 1 {
		t.Fatalf("cache size = %d, want 1", c.Size())
	}

	second, err := svc.Compute(ctx, req)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if second.Scores != first.Scores || second.Narrative != first.Narrative {
		t.Error("identical inputs should serve the memoized report")
	}
	if c.Size() != 1 {
		t.Errorf("cache size = %d after repeat request, want 1", c.Size())
	}

	// New data changes the fingerprint and yields a fresh entry.
	store.txs = append(store.txs, seedTx(2026, 8, 20, core.Expense, "800", "Travel", core.Wants))
	third, err := svc.Compute(ctx, req)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if third.Metrics.TotalSpending != 2600 {
		t.Errorf("TotalSpending = %.0f after new expense, want 2600", third.Metrics.TotalSpending)
	}
	if c.Size() != 2 {
		t.Errorf("cache size = %d after data change, want 2", c.Size())
	}
}

func TestService_CreateTransaction(t *testing.T) {
	store := seededStore()
	pub := &fakePublisher{}
	c := cache.NewLRUCache[Report](8, time.Minute)
	svc := newTestService(store, WithCache(c), WithPublisher(pub))
	ctx := context.Background()

	// Warm the cache.
	if _, err := svc.Compute(ctx, Request{RefDate: core.NewDate(2026, 8, 15)}); err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	ref, err := svc.CreateTransaction(ctx, seedTx(2026, 8, 22, core.Expense, "60", "Fuel", core.Wants))
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if ref != "fake:1" {
		t.Errorf("ref = %q", ref)
	}
	if c.Size() != 0 {
		t.Error("write should purge the memoized reports")
	}
	if len(pub.refs) != 1 || pub.refs[0] != "fake:1" {
		t.Errorf("publisher calls = %v, want the new ref", pub.refs)
	}
}

func TestService_CreateTransactionRejectsInvalid(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	before := len(store.txs)
	_, err := svc.CreateTransaction(context.Background(), core.Transaction{Type: "refund"})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("error = %v, want ErrInvalidType", err)
	}
	if len(store.txs) != before {
		t.Error("invalid transaction must not reach the writer")
	}
}

func TestService_CreateTransactionSurvivesPublishFailure(t *testing.T) {
	store := seededStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(store, WithPublisher(pub))

	ref, err := svc.CreateTransaction(context.Background(), seedTx(2026, 8, 22, core.Expense, "60", "Fuel", core.Wants))
	if err != nil {
		t.Fatalf("CreateTransaction() should tolerate publish failure, got %v", err)
	}
	if ref == "" {
		t.Error("write succeeded, ref should be returned")
	}
}

func TestSnapshotKey(t *testing.T) {
	aug := core.TimeWindow{Start: core.NewDate(2026, 8, 1), End: core.NewDate(2026, 8, 31)}
	if got := SnapshotKey(core.Monthly, aug); got != "monthly:2026-08" {
		t.Errorf("SnapshotKey(monthly) = %q", got)
	}
	year := core.TimeWindow{Start: core.NewDate(2026, 1, 1), End: core.NewDate(2026, 12, 31)}
	if got := SnapshotKey(core.Yearly, year); got != "yearly:2026" {
		t.Errorf("SnapshotKey(yearly) = %q", got)
	}
}
