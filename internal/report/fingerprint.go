package report

import (
	"fmt"
	"hash/fnv"
	"io"

	"finpulse/internal/core"
)

// fingerprint hashes everything a report depends on. Two requests with
// the same fingerprint are guaranteed to produce identical reports, so
// the memoization never needs explicit TTL-based correctness.
func fingerprint(req Request, w core.TimeWindow, txs, prevTxs []core.Transaction, budget core.BudgetContext) string {
	h := fnv.New64a()

	fmt.Fprintf(h, "%s|%s|%s|%s|",
		req.View, req.Granularity,
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))

	writeTxs(h, txs)
	io.WriteString(h, "/")
	writeTxs(h, prevTxs)

	if budget.Amount != nil {
		fmt.Fprintf(h, "|b=%s", budget.Amount.String())
	}
	if budget.Spent != nil {
		fmt.Fprintf(h, "|s=%s", budget.Spent.String())
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

func writeTxs(h io.Writer, txs []core.Transaction) {
	for _, tx := range txs {
		fmt.Fprintf(h, "%s,%s,%s,%s,%s,%s;",
			tx.ID, tx.Type, tx.Amount.String(),
			tx.EffectiveDate().Format("2006-01-02"),
			tx.Category, tx.Class)
	}
}
