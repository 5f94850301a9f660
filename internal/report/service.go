// Package report orchestrates the derived-metrics pipeline: it fetches
// transactions and budgets through the source ports, runs the window,
// aggregation, scoring and insight stages, and memoizes the result.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finpulse/internal/aggregate"
	"finpulse/internal/cache"
	"finpulse/internal/core"
	"finpulse/internal/health"
	"finpulse/internal/insight"
	"finpulse/internal/source"
	"finpulse/internal/window"
)

// Publisher is the outbound event port. Nil publishers are tolerated;
// report writes then simply skip the event.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, ref, category string) error
}

// Request identifies one report: a reference date, the view mode and
// the series granularity. Zero values take the defaults.
type Request struct {
	RefDate     time.Time
	View        core.ViewMode
	Granularity core.Granularity
}

// Report is the full derived output for one window.
type Report struct {
	Window     core.TimeWindow
	Previous   core.TimeWindow
	Series     core.BucketedSeries
	Categories core.CategorySummary
	Metrics    core.FinancialMetrics
	Budget     core.BudgetContext
	Scores     core.ScoreSet
	Narrative  core.Narrative
}

type Service struct {
	reader    source.TransactionReader
	writer    source.TransactionWriter
	budgets   source.BudgetReader
	insights  *insight.Generator
	cache     cache.Cache[Report]
	publisher Publisher
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source. Tests pin "today" with this.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher wires the transaction event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCache wires a memoization cache. Without one every request
// recomputes from scratch.
func WithCache(c cache.Cache[Report]) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(reader source.TransactionReader, writer source.TransactionWriter, budgets source.BudgetReader, insights *insight.Generator, opts ...Option) *Service {
	s := &Service{
		reader:   reader,
		writer:   writer,
		budgets:  budgets,
		insights: insights,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalize fills defaults and validates the request. The default
// granularity follows the view: daily buckets for a month, monthly
// buckets for a year.
func (s *Service) normalize(req Request) (Request, error) {
	if req.View == "" {
		req.View = core.Monthly
	}
	if !req.View.IsValid() {
		return req, fmt.Errorf("invalid view %q", req.View)
	}
	if req.Granularity == "" {
		if req.View == core.Yearly {
			req.Granularity = core.ByMonth
		} else {
			req.Granularity = core.ByDay
		}
	}
	if !req.Granularity.IsValid() {
		return req, fmt.Errorf("invalid granularity %q", req.Granularity)
	}
	if req.RefDate.IsZero() {
		req.RefDate = s.now()
	}
	return req, nil
}

// Compute builds the report for a request, serving from the memoization
// cache when the underlying data has not changed.
func (s *Service) Compute(ctx context.Context, req Request) (Report, error) {
	req, err := s.normalize(req)
	if err != nil {
		return Report{}, err
	}

	today := core.DateOnly(s.now())
	w := window.Resolve(req.RefDate, req.View, today)
	w.Granularity = req.Granularity
	prev := window.Previous(req.View, w)

	txs, err := s.reader.ListTransactions(ctx, w.Start, w.End)
	if err != nil {
		return Report{}, fmt.Errorf("list transactions: %w", err)
	}
	prevTxs, err := s.reader.ListTransactions(ctx, prev.Start, prev.End)
	if err != nil {
		return Report{}, fmt.Errorf("list previous transactions: %w", err)
	}

	var budgetList []core.Budget
	if s.budgets != nil {
		if budgetList, err = s.budgets.ListBudgets(ctx); err != nil {
			return Report{}, fmt.Errorf("list budgets: %w", err)
		}
	}
	budget := core.BudgetContext{}
	if active, ok := core.ActiveBudget(budgetList, w); ok {
		budget = active.Context()
	}

	key := fingerprint(req, w, txs, prevTxs, budget)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Report served from cache",
				"view", req.View,
				"window", w.Label,
				"cache_hit", true)
			return cached, nil
		}
	}

	r := s.build(req, w, prev, txs, prevTxs, budget)
	if s.cache != nil {
		s.cache.Set(key, r)
	}

	slog.InfoContext(ctx, "Report computed",
		"view", req.View,
		"granularity", req.Granularity,
		"window", w.Label,
		"tx_count", len(txs),
		"overall_score", r.Scores.Overall,
		"tone", r.Narrative.Tone)

	return r, nil
}

// build runs the pure pipeline stages in order.
func (s *Service) build(req Request, w, prev core.TimeWindow, txs, prevTxs []core.Transaction, budget core.BudgetContext) Report {
	series := aggregate.Series(txs, w, req.Granularity)
	categories := aggregate.Categories(txs, w)
	metrics := aggregate.Metrics(txs, w, prevTxs, prev, budget)
	scores := health.Compute(metrics, budget, req.View)
	narrative := s.insights.Generate(metrics, budget, scores.Overall)

	return Report{
		Window:     w,
		Previous:   prev,
		Series:     series,
		Categories: categories,
		Metrics:    metrics,
		Budget:     budget,
		Scores:     scores,
		Narrative:  narrative,
	}
}

// CreateTransaction validates and appends a transaction, invalidates
// the memoized reports and publishes a change event. A publish failure
// never fails the write; the record is already stored.
func (s *Service) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	ref, err := s.writer.Append(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("append transaction: %w", err)
	}

	if s.cache != nil {
		s.cache.Purge()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionEvent(ctx, ref, tx.Category); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"ref", ref, "error", err)
		}
	} else {
		slog.WarnContext(ctx, "No event publisher configured, skipping transaction event")
	}

	return ref, nil
}

// SnapshotKey names the stored snapshot for a view and window, e.g.
// "monthly:2026-08".
func SnapshotKey(view core.ViewMode, w core.TimeWindow) string {
	if view == core.Yearly {
		return fmt.Sprintf("yearly:%s", w.Start.Format("2006"))
	}
	return fmt.Sprintf("monthly:%s", w.Start.Format("2006-01"))
}
