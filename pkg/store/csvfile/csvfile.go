// Package csvfile implements a ledger store backed by a local CSV file.
// Useful for local runs without Google credentials; the column layout
// matches the sheets store.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
)

var headers = []string{
	"ID", "Fecha", "Tipo", "Cantidad", "Divisa", "Tipo de Cambio",
	"Categoria", "Detalle", "Telefono", "Creado",
}

const (
	dateLayout = "2006-01-02"
)

// Store is a file-backed api.LedgerStore. Appends go straight to disk;
// queries re-read the whole file.
type Store struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	logger *slog.Logger
}

// New opens or creates the CSV ledger at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening ledger file: %w", err)
	}

	s := &Store{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger,
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat ledger file: %w", err)
	}
	if stat.Size() == 0 {
		if err := s.writeHeaders(); err != nil {
			file.Close()
			return nil, fmt.Errorf("writing headers: %w", err)
		}
	}

	logger.Info("csv ledger initialized", "file", path)
	return s, nil
}

func (s *Store) writeHeaders() error {
	if err := s.writer.Write(headers); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Append writes one transaction row to the file.
func (s *Store) Append(_ context.Context, tx api.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := []string{
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
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("writing ledger record: %w", err)
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flushing ledger: %w", err)
	}

	s.logger.Debug("appended transaction", "id", tx.ID)
	return nil
}

// Query re-reads the file and returns transactions matching the filter.
func (s *Store) Query(_ context.Context, f api.Filter) ([]api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	var out []api.Transaction
	for i, record := range records {
		if i == 0 {
			continue // header row
		}
		tx, err := parseRecord(record)
		if err != nil {
			s.logger.Warn("skipping malformed ledger row", "row", i+1, "error", err)
			continue
		}
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func parseRecord(record []string) (api.Transaction, error) {
	if len(record) < len(headers) {
		return api.Transaction{}, fmt.Errorf("expected %d columns, got %d", len(headers), len(record))
	}

	date, err := time.Parse(dateLayout, record[1])
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing date: %w", err)
	}
	amount, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing amount: %w", err)
	}
	rate, err := strconv.ParseInt(record[5], 10, 64)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing exchange rate: %w", err)
	}
	phone, err := strconv.ParseInt(record[8], 10, 64)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing phone: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, record[9])
	if err != nil {
		return api.Transaction{}, fmt.Errorf("parsing created timestamp: %w", err)
	}

	return api.Transaction{
		ID:           record[0],
		Date:         date,
		Type:         api.TransactionType(record[2]),
		Amount:       amount,
		Currency:     record[4],
		ExchangeRate: rate,
		Category:     record[6],
		Detail:       record[7],
		Phone:        phone,
		CreatedAt:    createdAt,
	}, nil
}

// Close flushes and closes the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing ledger file: %w", err)
	}
	return nil
}
