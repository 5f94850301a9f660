package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
	"finpulse/internal/report"
)

type fakeComputer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeComputer) Compute(_ context.Context, req report.Request) (report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return report.Report{}, f.err
	}
	return report.Report{
		Window: core.TimeWindow{
			Start: core.NewDate(req.RefDate.Year(), int(req.RefDate.Month()), 1),
			End:   core.DateOnly(req.RefDate),
			Label: req.RefDate.Format("January 2006"),
		},
		Scores: core.ScoreSet{Overall: 72},
	}, nil
}

func (f *fakeComputer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSnapshotStore struct {
	mu      sync.Mutex
	saves   map[string][]byte
	saveErr error
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{saves: make(map[string][]byte)}
}

func (f *fakeSnapshotStore) SaveSnapshot(_ context.Context, key string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves[key] = payload
	return nil
}

func (f *fakeSnapshotStore) get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.saves[key]
	return p, ok
}

type fakeConsumer struct {
	events []*amqp.TransactionEventMessage
}

func (f *fakeConsumer) ConsumeTransactionEvents(ctx context.Context, handler func(*amqp.TransactionEventMessage) error) error {
	for _, msg := range f.events {
		if err := handler(msg); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func augustClock() func() time.Time {
	return func() time.Time { return core.NewDate(2026, 8, 30) }
}

func TestSnapshotWorker_Snapshot(t *testing.T) {
	computer := &fakeComputer{}
	store := newFakeSnapshotStore()
	w := NewSnapshotWorker(computer, store, nil, time.Hour, WithClock(augustClock()))

	if err := w.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	payload, ok := store.get("monthly:2026-08")
	if !ok {
		t.Fatalf("snapshot not stored, saves = %v", store.saves)
	}

	var r report.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		t.Fatalf("payload is not a JSON report: %v", err)
	}
	if r.Scores.Overall != 72 {
		t.Errorf("Overall = %d, want 72", r.Scores.Overall)
	}
}

func TestSnapshotWorker_SnapshotPropagatesErrors(t *testing.T) {
	store := newFakeSnapshotStore()

	w := NewSnapshotWorker(&fakeComputer{err: errors.New("source down")}, store, nil, time.Hour, WithClock(augustClock()))
	if err := w.Snapshot(context.Background()); err == nil {
		t.Error("compute failure should propagate")
	}

	store.saveErr = errors.New("disk full")
	w = NewSnapshotWorker(&fakeComputer{}, store, nil, time.Hour, WithClock(augustClock()))
	if err := w.Snapshot(context.Background()); err == nil {
		t.Error("save failure should propagate")
	}
}

func TestSnapshotWorker_HandleTransactionEvent(t *testing.T) {
	computer := &fakeComputer{}
	store := newFakeSnapshotStore()
	w := NewSnapshotWorker(computer, store, nil, time.Hour, WithClock(augustClock()))

	msg := amqp.NewTransactionEventMessage("sqlite:7", "Rent")
	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleTransactionEvent() error = %v", err)
	}
	if _, ok := store.get("monthly:2026-08"); !ok {
		t.Error("event should refresh the snapshot")
	}
}

func TestSnapshotWorker_RunConsumesAndTicks(t *testing.T) {
	computer := &fakeComputer{}
	store := newFakeSnapshotStore()
	consumer := &fakeConsumer{events: []*amqp.TransactionEventMessage{
		amqp.NewTransactionEventMessage("mem:1", "Food"),
		amqp.NewTransactionEventMessage("mem:2", "Rent"),
	}}
	w := NewSnapshotWorker(computer, store, consumer, 20*time.Millisecond, WithClock(augustClock()))

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context cancellation", err)
	}

	// Startup snapshot + two events + at least one tick.
	if got := computer.count(); got < 4 {
		t.Errorf("computed %d snapshots, want at least 4", got)
	}
	if _, ok := store.get("monthly:2026-08"); !ok {
		t.Error("snapshot should be stored")
	}
}
