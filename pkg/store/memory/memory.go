// Package memory implements in-memory ledger and budget stores.
// Used by tests and by the "memory" backend for local runs; contents
// are lost on process exit.
package memory

import (
	"context"
	"sync"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
)

// Store holds transactions and budgets in process memory. It implements
// both api.LedgerStore and api.BudgetStore.
type Store struct {
	mu           sync.Mutex
	transactions []api.Transaction
	budgets      map[int64]int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{budgets: make(map[int64]int64)}
}

// Append adds a transaction to the ledger.
func (s *Store) Append(_ context.Context, tx api.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
	return nil
}

// Query returns all transactions matching the filter, in append order.
func (s *Store) Query(_ context.Context, f api.Filter) ([]api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []api.Transaction
	for _, tx := range s.transactions {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Get returns the stored budget for phone.
func (s *Store) Get(_ context.Context, phone int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amount, ok := s.budgets[phone]
	return amount, ok, nil
}

// Set replaces the budget for phone.
func (s *Store) Set(_ context.Context, phone int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[phone] = amount
	return nil
}

// Len returns the number of transactions in the ledger.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}
