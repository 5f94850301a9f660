// Package worker keeps report snapshots fresh: it recomputes the
// current-month report whenever a transaction event arrives and on a
// fixed interval as a backstop for lost messages.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
	"finpulse/internal/report"
)

// ReportComputer produces reports. Satisfied by *report.Service.
type ReportComputer interface {
	Compute(ctx context.Context, req report.Request) (report.Report, error)
}

// SnapshotStore persists serialized reports. Satisfied by
// *storage.SQLiteRepository.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, key string, payload []byte) error
}

// EventConsumer delivers transaction change events. Satisfied by
// *amqp.Client.
type EventConsumer interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(*amqp.TransactionEventMessage) error) error
}

type SnapshotWorker struct {
	reports  ReportComputer
	store    SnapshotStore
	consumer EventConsumer
	interval time.Duration
	now      func() time.Time
}

// Option customizes a SnapshotWorker.
type Option func(*SnapshotWorker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *SnapshotWorker) { w.now = now }
}

func NewSnapshotWorker(reports ReportComputer, store SnapshotStore, consumer EventConsumer, interval time.Duration, opts ...Option) *SnapshotWorker {
	w := &SnapshotWorker{
		reports:  reports,
		store:    store,
		consumer: consumer,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until the context is cancelled, consuming events and
// ticking the periodic backstop concurrently.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeTransactionEvents(ctx, func(msg *amqp.TransactionEventMessage) error {
				return w.HandleTransactionEvent(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		return w.runPeriodic(ctx)
	})

	return g.Wait()
}

func (w *SnapshotWorker) runPeriodic(ctx context.Context) error {
	// Snapshot once at startup so a restart never leaves a stale store.
	if err := w.Snapshot(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup snapshot failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic snapshots", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Snapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot failed", "error", err)
			}
		}
	}
}

// HandleTransactionEvent recomputes the snapshot after a data change.
// A returned error makes the broker requeue the event.
func (w *SnapshotWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"ref", msg.Ref,
		"category", msg.Category)

	return w.Snapshot(ctx)
}

// Snapshot computes the current-month report and persists it under its
// snapshot key.
func (w *SnapshotWorker) Snapshot(ctx context.Context) error {
	r, err := w.reports.Compute(ctx, report.Request{
		RefDate: w.now(),
		View:    core.Monthly,
	})
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	key := report.SnapshotKey(core.Monthly, r.Window)
	if err := w.store.SaveSnapshot(ctx, key, payload); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Report snapshot saved",
		"snapshot_key", key,
		"overall_score", r.Scores.Overall,
		"size_bytes", len(payload))

	return nil
}
