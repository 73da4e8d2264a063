// Package google exports revaluation runs to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"rivaluta/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Rivalutazioni"

type Config struct {
	SpreadsheetID string
	SheetName     string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// valuesAppender is the slice of the Sheets API the client needs.
type valuesAppender interface {
	Append(ctx context.Context, spreadsheetID, rng string, values [][]any) (string, error)
}

type Client struct {
	values        valuesAppender
	spreadsheetID string
	sheetName     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return newClient(&apiAppender{svc: svc}, cfg), nil
}

func newClient(values valuesAppender, cfg Config) *Client {
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Client{
		values:        values,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials,
// falling back to GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.DebugContext(ctx, "Google Sheets service created")
	return service, nil
}

type apiAppender struct {
	svc *gsheet.Service
}

func (a *apiAppender) Append(ctx context.Context, spreadsheetID, rng string, values [][]any) (string, error) {
	resp, err := a.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

// Name implements services.OutcomeSink
func (c *Client) Name() string { return "sheets" }

// RecordRun implements services.OutcomeSink by appending one row per period.
func (c *Client) RecordRun(ctx context.Context, run *core.Run) error {
	if len(run.Outcomes) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	ref, err := c.values.Append(ctx, c.spreadsheetID, rng, runRows(run))
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Run exported to Google Sheets",
		"run_id", run.ID,
		"rows", len(run.Outcomes),
		"sheets_ref", ref)
	return nil
}

// runRows lays a run out as Run | Period | Amount | Reference | Coefficient |
// Revalued | Error. Values stay text so the sheet shows ISTAT's digits.
func runRows(run *core.Run) [][]any {
	rows := make([][]any, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		row := []any{
			run.ID,
			o.Period.String(),
			run.Amount.String(),
			run.Reference.String(),
			"", "", "",
		}
		if o.OK() {
			row[4] = o.Result.Coefficient
			row[5] = o.Result.RevaluedAmount
		} else {
			row[6] = string(o.Kind)
		}
		rows = append(rows, row)
	}
	return rows
}
