// Package storage is the SQLite persistence layer: transactions,
// budgets and the report snapshots the worker writes.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finpulse/internal/core"
	"finpulse/internal/source"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when no snapshot exists for a key.
var ErrNoSnapshot = errors.New("no snapshot stored")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

// Ensure interface conformance
var (
	_ source.TransactionReader = (*SQLiteRepository)(nil)
	_ source.TransactionWriter = (*SQLiteRepository)(nil)
	_ source.BudgetReader      = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions implements source.TransactionReader. The effective
// date (tx_date, falling back to posted_at) drives the range filter.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	const q = `
		SELECT id, type, amount, tx_date, posted_at, category, class
		FROM transactions
		WHERE COALESCE(tx_date, posted_at) >= ? AND COALESCE(tx_date, posted_at) <= ?
		ORDER BY COALESCE(tx_date, posted_at), id`

	rows, err := r.db.QueryContext(ctx, q,
		core.DateOnly(start).Format(dateLayout),
		core.DateOnly(end).Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			id                     int64
			typ, amount, category  string
			txDate, postedAt, cls  sql.NullString
		)
		if err := rows.Scan(&id, &typ, &amount, &txDate, &postedAt, &category, &cls); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		tx := core.Transaction{
			ID:       strconv.FormatInt(id, 10),
			Type:     core.TransactionType(typ),
			Amount:   core.AmountOrZero(amount),
			Category: category,
			Class:    core.ExpenseClass(cls.String),
		}
		tx.Date = parseNullDate(txDate)
		tx.PostedAt = parseNullDate(postedAt)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Append implements source.TransactionWriter.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	const q = `
		INSERT INTO transactions (type, amount, tx_date, posted_at, category, class)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q,
		string(tx.Type),
		tx.Amount.String(),
		formatNullDate(tx.Date),
		formatNullDate(tx.PostedAt),
		strings.TrimSpace(tx.Category),
		string(tx.Class))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", tx.Type,
		"category", tx.Category)

	return strconv.FormatInt(id, 10), nil
}

// ListBudgets implements source.BudgetReader.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	const q = `SELECT id, amount, start_date, end_date FROM budgets ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			id         int64
			amount     string
			start, end sql.NullString
		)
		if err := rows.Scan(&id, &amount, &start, &end); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}

		d, err := decimal.NewFromString(amount)
		if err != nil {
			continue
		}
		out = append(out, core.Budget{
			ID:     strconv.FormatInt(id, 10),
			Amount: d,
			Start:  parseNullDate(start),
			End:    parseNullDate(end),
		})
	}
	return out, rows.Err()
}

// CreateBudget stores a budget and returns its identifier.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (string, error) {
	if b.Amount.IsNegative() || b.Amount.IsZero() {
		return "", core.ErrInvalidAmount
	}

	const q = `INSERT INTO budgets (amount, start_date, end_date) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.Amount.String(),
		formatNullDate(b.Start),
		formatNullDate(b.End))
	if err != nil {
		return "", fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("budget id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// SaveSnapshot upserts a serialized report under the given key.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, key string, payload []byte) error {
	const q = `
		INSERT INTO report_snapshots (snapshot_key, payload, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(snapshot_key) DO UPDATE SET
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, q, key, string(payload)); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// LatestSnapshot returns the stored payload for a key, or ErrNoSnapshot.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT payload FROM report_snapshots WHERE snapshot_key = ?`

	var payload string
	err := r.db.QueryRowContext(ctx, q, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return []byte(payload), nil
}

func parseNullDate(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatNullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return core.DateOnly(t).Format(dateLayout)
}
