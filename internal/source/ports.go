// Package source declares the ports for transaction and budget data.
// Adapters live in subpackages; the report service only sees these
// interfaces.
package source

import (
	"context"
	"time"

	"finpulse/internal/core"
)

type (
	// TransactionReader lists transactions whose effective date falls in
	// the closed range [start, end].
	TransactionReader interface {
		ListTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error)
	}

	// TransactionWriter appends a transaction and returns an
	// adapter-specific reference for it.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (ref string, err error)
	}

	// BudgetReader lists every configured budget. Active-budget
	// selection against a window happens in the report service.
	BudgetReader interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}
)
