package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/report"
)

const requestDateLayout = "2006-01-02"

// maxTransactionBodySize bounds POST bodies; transaction payloads are
// tiny and anything larger is hostile.
const maxTransactionBodySize = 16 * 1024

// parseReportRequest reads the report query parameters. Absent
// parameters stay zero so the report service applies its own defaults.
func parseReportRequest(r *http.Request) (report.Request, error) {
	var req report.Request
	q := r.URL.Query()

	if raw := q.Get("date"); raw != "" {
		d, err := time.Parse(requestDateLayout, raw)
		if err != nil {
			return req, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
		}
		req.RefDate = d
	}

	if raw := q.Get("view"); raw != "" {
		view := core.ViewMode(strings.ToLower(raw))
		if !view.IsValid() {
			return req, fmt.Errorf("invalid view %q: expected monthly or yearly", raw)
		}
		req.View = view
	}

	if raw := q.Get("granularity"); raw != "" {
		g := core.Granularity(strings.ToLower(raw))
		if !g.IsValid() {
			return req, fmt.Errorf("invalid granularity %q: expected day, week or month", raw)
		}
		req.Granularity = g
	}

	return req, nil
}

// transactionPayload is the JSON body for POST /api/transactions.
// Amount arrives as a string so decimal precision survives transport.
type transactionPayload struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	PostedAt string `json:"posted_at,omitempty"`
	Category string `json:"category"`
	Class    string `json:"class,omitempty"`
}

// parseTransactionBody decodes and converts the payload. Validation of
// domain rules happens in the report service; this only handles the
// transport format.
func parseTransactionBody(r *http.Request) (core.Transaction, error) {
	var tx core.Transaction

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTransactionBodySize))
	if err != nil {
		return tx, fmt.Errorf("failed to read request body: %w", err)
	}

	var payload transactionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return tx, fmt.Errorf("invalid JSON body: %w", err)
	}

	tx.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(payload.Type)))
	tx.Category = strings.TrimSpace(payload.Category)
	tx.Class = core.ExpenseClass(strings.ToLower(strings.TrimSpace(payload.Class)))

	amount, err := core.ParseAmount(payload.Amount)
	if err != nil {
		return tx, fmt.Errorf("invalid amount %q", payload.Amount)
	}
	tx.Amount = amount

	if payload.Date != "" {
		d, err := time.Parse(requestDateLayout, payload.Date)
		if err != nil {
			return tx, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", payload.Date)
		}
		tx.Date = d
	}
	if payload.PostedAt != "" {
		d, err := time.Parse(requestDateLayout, payload.PostedAt)
		if err != nil {
			return tx, fmt.Errorf("invalid posted_at %q: expected YYYY-MM-DD", payload.PostedAt)
		}
		tx.PostedAt = d
	}

	return tx, nil
}
