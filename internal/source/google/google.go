// Package google reads transactions and budgets from a Google
// Spreadsheet. The transactions sheet carries one row per record with
// the columns Date, Type, Amount, Category, Class; the budgets sheet
// carries Amount, Start, End.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finpulse/internal/core"
	"finpulse/internal/source"
)

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	transactionSheet string
	budgetSheet      string
}

// Ensure interface conformance
var (
	_ source.TransactionReader = (*Client)(nil)
	_ source.TransactionWriter = (*Client)(nil)
	_ source.BudgetReader      = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Transactions"),
// GOOGLE_BUDGET_SHEET_NAME (default "Budgets"), plus service account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	txSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if txSheet == "" {
		txSheet = "Transactions"
	}
	budgetSheet := strings.TrimSpace(os.Getenv("GOOGLE_BUDGET_SHEET_NAME"))
	if budgetSheet == "" {
		budgetSheet = "Budgets"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		transactionSheet: txSheet,
		budgetSheet:      budgetSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON))

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ListTransactions scans the transaction sheet and returns the records
// whose effective date falls in [start, end]. Parsing is best-effort:
// malformed rows are skipped, never returned as errors.
func (c *Client) ListTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:E", c.transactionSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	w := core.TimeWindow{Start: start, End: end}
	var out []core.Transaction
	for i, row := range resp.Values {
		// Header rows and malformed rows simply fail to parse.
		tx, ok := parseTransactionRow(toStrings(row))
		if !ok {
			continue
		}
		tx.ID = fmt.Sprintf("%s!%d", c.transactionSheet, i+1)
		if tx.In(w) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Append writes a transaction to the next free row and returns the
// sheet reference for it.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.transactionSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.transactionSheet, err)
	}
	nextRow := len(resp.Values) + 1

	amount, _ := tx.Amount.Float64()
	dataRange := fmt.Sprintf("%s!A%d:E%d", c.transactionSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		tx.EffectiveDate().Format("2006-01-02"),
		string(tx.Type),
		amount,
		tx.Category,
		string(tx.Class),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// ListBudgets scans the budget sheet. Malformed rows are skipped.
func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:C", c.budgetSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.Budget
	for i, row := range resp.Values {
		b, ok := parseBudgetRow(toStrings(row))
		if !ok {
			continue
		}
		b.ID = fmt.Sprintf("%s!%d", c.budgetSheet, i+1)
		out = append(out, b)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
