package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Needs ExpenseClass = "needs"
	Wants ExpenseClass = "wants"
)

const (
	Monthly ViewMode = "monthly"
	Yearly  ViewMode = "yearly"
)

const (
	ByDay   Granularity = "day"
	ByWeek  Granularity = "week"
	ByMonth Granularity = "month"
)

type (
	TransactionType string

	// ExpenseClass is the user-assigned needs/wants classification.
	// Empty means unclassified.
	ExpenseClass string

	ViewMode string

	Granularity string

	// Transaction is a single record from the transaction store.
	// Immutable once fetched; the pipeline only reads it.
	Transaction struct {
		ID       string
		Type     TransactionType
		Amount   decimal.Decimal
		Date     time.Time // date the money moved
		PostedAt time.Time // fallback when Date is unknown
		Category string
		Class    ExpenseClass
	}

	// TimeWindow is the closed date range metrics are computed over.
	// Start may exceed End for far-future reference dates; callers treat
	// such a window as empty, never as an error.
	TimeWindow struct {
		Start       time.Time
		End         time.Time
		Granularity Granularity
		Label       string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidClass    = errors.New("invalid expense class")
	ErrMissingDate     = errors.New("missing transaction date")
	ErrMissingCategory = errors.New("missing category")
)

// EffectiveDate returns the date used for bucketing: Date when set,
// otherwise PostedAt. Zero when both are missing.
func (t Transaction) EffectiveDate() time.Time {
	if !t.Date.IsZero() {
		return t.Date
	}
	return t.PostedAt
}

func (tt TransactionType) IsValid() bool {
	switch tt {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (c ExpenseClass) IsValid() bool {
	switch c {
	case Needs, Wants, "":
		return true
	}
	return false
}

func (m ViewMode) IsValid() bool {
	return m == Monthly || m == Yearly
}

func (g Granularity) IsValid() bool {
	switch g {
	case ByDay, ByWeek, ByMonth:
		return true
	}
	return false
}

// Validate checks a transaction before it is written to a store. The
// read path is deliberately more forgiving: malformed stored records are
// excluded from aggregation instead of rejected.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.EffectiveDate().IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.Category) == "" && t.Type == Expense {
		return ErrMissingCategory
	}
	if !t.Class.IsValid() {
		return ErrInvalidClass
	}
	return nil
}

// In returns true if the transaction's effective date falls inside the
// closed interval [w.Start, w.End].
func (t Transaction) In(w TimeWindow) bool {
	d := t.EffectiveDate()
	if d.IsZero() {
		return false
	}
	day := DateOnly(d)
	return !day.Before(DateOnly(w.Start)) && !day.After(DateOnly(w.End))
}

// IsEmpty reports whether the window contains no days.
func (w TimeWindow) IsEmpty() bool {
	return DateOnly(w.End).Before(DateOnly(w.Start))
}

// Days returns the number of calendar days in the closed window, zero
// for empty windows.
func (w TimeWindow) Days() int {
	if w.IsEmpty() {
		return 0
	}
	return int(DateOnly(w.End).Sub(DateOnly(w.Start)).Hours()/24) + 1
}

// DateOnly truncates a timestamp to midnight UTC so that comparisons
// operate on calendar dates regardless of the stored time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate creates a calendar date at midnight UTC.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
