// Package jsonfile implements a budget store backed by a JSON file.
//
// The file holds a single object mapping phone numbers (as strings) to
// budget amounts in COP. Every operation re-reads the file, so external
// edits are picked up; writes are serialized with a mutex within this
// process only.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Store is a file-backed api.BudgetStore.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a Store writing to path. The file is created on first Set.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Get returns the stored budget for phone.
func (s *Store) Get(_ context.Context, phone int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budgets, err := s.load()
	if err != nil {
		return 0, false, err
	}
	amount, ok := budgets[strconv.FormatInt(phone, 10)]
	return amount, ok, nil
}

// Set replaces the budget for phone.
func (s *Store) Set(_ context.Context, phone int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	budgets, err := s.load()
	if err != nil {
		return err
	}
	budgets[strconv.FormatInt(phone, 10)] = amount

	return s.save(budgets)
}

// load reads the budgets file. A missing file is an empty store.
func (s *Store) load() (map[string]int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]int64), nil
		}
		return nil, fmt.Errorf("reading budgets file: %w", err)
	}

	budgets := make(map[string]int64)
	if len(data) == 0 {
		return budgets, nil
	}
	if err := json.Unmarshal(data, &budgets); err != nil {
		return nil, fmt.Errorf("parsing budgets file: %w", err)
	}
	return budgets, nil
}

func (s *Store) save(budgets map[string]int64) error {
	data, err := json.MarshalIndent(budgets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling budgets: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating budgets directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing budgets file: %w", err)
	}

	s.logger.Debug("wrote budgets file", "path", s.path, "count", len(budgets))
	return nil
}
