// Package memory is the in-process transaction and budget store used
// for development and tests. Optionally seeded from plain text files.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
)

type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets []core.Budget
}

func New(txs []core.Transaction, budgets []core.Budget) *Store {
	return &Store{
		txs:     append([]core.Transaction(nil), txs...),
		budgets: append([]core.Budget(nil), budgets...),
	}
}

// NewFromFiles seeds a store from base/seed_transactions.txt and
// base/seed_budgets.txt. Missing or malformed lines are skipped; a
// missing file yields an empty store.
func NewFromFiles(base string) *Store {
	s := &Store{}
	for _, line := range readLines(filepath.Join(base, "seed_transactions.txt")) {
		if tx, err := parseTransactionLine(line); err == nil {
			s.txs = append(s.txs, tx)
		}
	}
	for _, line := range readLines(filepath.Join(base, "seed_budgets.txt")) {
		if b, err := parseBudgetLine(line); err == nil {
			s.budgets = append(s.budgets, b)
		}
	}
	return s
}

// ListTransactions returns transactions whose effective date falls in
// the closed range [start, end].
func (s *Store) ListTransactions(_ context.Context, start, end time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := core.TimeWindow{Start: start, End: end}
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if tx.In(w) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Append stores the transaction and returns a synthetic reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = fmt.Sprintf("mem-%d", len(s.txs)+1)
	}
	s.txs = append(s.txs, tx)
	return fmt.Sprintf("mem:%d", len(s.txs)), nil
}

// ListBudgets returns every configured budget.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

// SetBudgets replaces the budget list. Test helper.
func (s *Store) SetBudgets(budgets []core.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append([]core.Budget(nil), budgets...)
}

// parseTransactionLine parses "date|type|amount|category|class", e.g.
// "2026-08-03|expense|42.50|Groceries|needs". Class may be empty.
func parseTransactionLine(line string) (core.Transaction, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 4 {
		return core.Transaction{}, fmt.Errorf("transaction line needs at least 4 fields, got %d", len(parts))
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}
	amount, err := core.ParseAmount(parts[2])
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		Type:     core.TransactionType(strings.TrimSpace(parts[1])),
		Amount:   amount,
		Date:     date,
		Category: strings.TrimSpace(parts[3]),
	}
	if len(parts) > 4 {
		tx.Class = core.ExpenseClass(strings.TrimSpace(parts[4]))
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// parseBudgetLine parses "amount|start|end", e.g.
// "1500|2026-08-01|2026-08-31". Start and end may be empty.
func parseBudgetLine(line string) (core.Budget, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 1 || strings.TrimSpace(parts[0]) == "" {
		return core.Budget{}, fmt.Errorf("budget line needs an amount")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget amount: %w", err)
	}
	if amount.IsNegative() {
		return core.Budget{}, core.ErrInvalidAmount
	}

	b := core.Budget{Amount: amount}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		if b.Start, err = time.Parse("2006-01-02", strings.TrimSpace(parts[1])); err != nil {
			return core.Budget{}, fmt.Errorf("parse budget start: %w", err)
		}
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		if b.End, err = time.Parse("2006-01-02", strings.TrimSpace(parts[2])); err != nil {
			return core.Budget{}, fmt.Errorf("parse budget end: %w", err)
		}
	}
	return b, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
