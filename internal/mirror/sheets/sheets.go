// Package sheets mirrors record tables into a Google Spreadsheet, one sheet
// per domain. The store stays the source of truth: each write replaces the
// whole sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Credentials selects the service account used to reach the Sheets API.
// JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// valuesAPI is the subset of the Sheets values API the mirror needs.
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

type Mirror struct {
	api           valuesAPI
	spreadsheetID string
	prefix        string
}

// New creates a mirror backed by the Sheets API.
func New(ctx context.Context, spreadsheetID, prefix string, creds Credentials) (*Mirror, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newMirror(&serviceValues{svc: svc}, spreadsheetID, prefix), nil
}

func newMirror(api valuesAPI, spreadsheetID, prefix string) *Mirror {
	return &Mirror{api: api, spreadsheetID: spreadsheetID, prefix: strings.TrimSpace(prefix)}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(creds.JSON)
	case strings.TrimSpace(creds.File) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", creds.File)
		data, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName returns the sheet holding a domain, e.g. "Fintrack expenses".
func (m *Mirror) SheetName(domain string) string {
	if m.prefix == "" {
		return domain
	}
	return m.prefix + " " + domain
}

// WriteTable replaces the content of the domain's sheet with header + rows.
func (m *Mirror) WriteTable(ctx context.Context, domain string, header []string, rows [][]string) error {
	if m.api == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := quoteSheet(m.SheetName(domain))

	if err := m.api.Clear(ctx, m.spreadsheetID, sheet+"!A:Z"); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, toAny(header))
	for _, r := range rows {
		values = append(values, toAny(r))
	}
	if err := m.api.Update(ctx, m.spreadsheetID, sheet+"!A1", values); err != nil {
		return fmt.Errorf("update sheet %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Mirrored table to Google Sheets",
		"domain", domain,
		"sheet", sheet,
		"rows", len(rows))
	return nil
}

// quoteSheet wraps a sheet name in A1 notation quotes.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

type serviceValues struct {
	svc *gsheet.Service
}

func (s *serviceValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (s *serviceValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	// RAW keeps amounts and dates as written by the store.
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
