// Package sheets implements a ledger store backed by a Google Sheet.
//
// One transaction per row. Appends are single atomic row inserts;
// queries read the whole sheet and filter in memory, which is fine at
// chat-bot volume.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
)

const (
	dateLayout = "2006-01-02"

	// retryAttempts and retryDelay govern 429 handling on writes.
	retryAttempts = 3
	retryDelay    = 30 * time.Second
)

var headers = []any{
	"ID", "Fecha", "Tipo", "Cantidad", "Divisa", "Tipo de Cambio",
	"Categoria", "Detalle", "Telefono", "Creado",
}

// Config holds configuration for the sheets store.
type Config struct {
	// SpreadsheetID is the ID of an existing spreadsheet to use.
	SpreadsheetID string
	// SpreadsheetTitle is the title for a new spreadsheet, used when
	// SpreadsheetID is empty or stale.
	SpreadsheetTitle string
	// SheetName is the tab within the spreadsheet.
	SheetName string
}

// Store is a Google-Sheets-backed api.LedgerStore.
type Store struct {
	client        *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// New creates a Store using httpClient for API access. The client must
// carry credentials with the spreadsheets scope.
func New(httpClient *http.Client, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := sheets.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	s := &Store{
		client:    client,
		sheetName: cfg.SheetName,
		logger:    logger,
	}

	spreadsheetID, err := s.initSpreadsheet(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing spreadsheet: %w", err)
	}
	s.spreadsheetID = spreadsheetID

	logger.Info("sheets ledger initialized", "spreadsheet_id", spreadsheetID, "sheet", cfg.SheetName)
	return s, nil
}

func (s *Store) initSpreadsheet(ctx context.Context, cfg Config) (string, error) {
	if cfg.SpreadsheetID != "" {
		spreadsheet, err := s.client.Spreadsheets.Get(cfg.SpreadsheetID).Context(ctx).Do()
		if err == nil {
			s.logger.Info("using existing spreadsheet", "title", spreadsheet.Properties.Title, "id", cfg.SpreadsheetID)
			return cfg.SpreadsheetID, nil
		}
		s.logger.Warn("failed to get spreadsheet, will create new one", "id", cfg.SpreadsheetID, "error", err)
	}

	spreadsheet, err := s.client.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: cfg.SpreadsheetTitle,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating spreadsheet: %w", err)
	}

	s.logger.Info("created new spreadsheet", "title", cfg.SpreadsheetTitle, "id", spreadsheet.SpreadsheetId)

	headerRange := fmt.Sprintf("%s!A1:J1", s.sheetName)
	headerReq := sheets.ValueRange{Values: [][]any{headers}}
	_, err = s.client.Spreadsheets.Values.Update(spreadsheet.SpreadsheetId, headerRange, &headerReq).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("writing headers: %w", err)
	}

	return spreadsheet.SpreadsheetId, nil
}

// Append inserts one transaction row, retrying on rate limits. The row
// either lands fully or the error propagates; there is no partial state.
func (s *Store) Append(ctx context.Context, tx api.Transaction) error {
	row := []any{
		tx.ID,
		tx.Date.Format(dateLayout),
		string(tx.Type),
		strconv.FormatInt(tx.Amount, 10),
		tx.Currency,
		strconv.FormatInt(tx.ExchangeRate, 10),
		tx.Category,
		tx.Detail,
		strconv.FormatInt(tx.Phone, 10),
		tx.CreatedAt.Format(time.RFC3339),
	}

	writeRange := fmt.Sprintf("%s!A2:J2", s.sheetName)
	writeReq := sheets.ValueRange{Values: [][]any{row}}

	err := retry.Do(
		func() error {
			_, err := s.client.Spreadsheets.Values.Append(s.spreadsheetID, writeRange, &writeReq).
				ValueInputOption("RAW").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				s.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("appending row to sheet: %w", err)
	}

	s.logger.Debug("appended transaction", "id", tx.ID)
	return nil
}

// Query reads all rows and returns the transactions matching the filter.
func (s *Store) Query(ctx context.Context, f api.Filter) ([]api.Transaction, error) {
	readRange := fmt.Sprintf("%s!A2:J", s.sheetName)
	resp, err := s.client.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	var out []api.Transaction
	for i, row := range resp.Values {
		tx, err := parseRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed sheet row", "row", i+2, "error", err)
			continue
		}
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// SpreadsheetID returns the ID of the spreadsheet in use.
func (s *Store) SpreadsheetID() string {
	return s.spreadsheetID
}

func parseRow(row []any) (api.Transaction, error) {
	if len(row) < len(headers) {
		return api.Transaction{}, fmt.Errorf("expected %d columns, got %d", len(headers), len(row))
	}

	cells := make([]string, len(headers))
	for i := range cells {
		cells[i] = fmt.Sprint(row[i])
	}

	date, err := time.Parse(dateLayout, cells[1])
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing date: %w", err)
	}
	amount, err := strconv.ParseInt(cells[3], 10, 64)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing amount: %w", err)
	}
	rate, err := strconv.ParseInt(cells[5], 10, 64)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing exchange rate: %w", err)
	}
	phone, err := strconv.ParseInt(cells[8], 10, 64)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing phone: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, cells[9])
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing created timestamp: %w", err)
	}

	return api.Transaction{
		ID:           cells[0],
		Date:         date,
		Type:         api.TransactionType(cells[2]),
		Amount:       amount,
		Currency:     cells[4],
		ExchangeRate: rate,
		Category:     cells[6],
		Detail:       cells[7],
		Phone:        phone,
		CreatedAt:    createdAt,
	}, nil
}
