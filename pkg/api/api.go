// Package api defines the core domain types and storage interfaces for the chatbot.
package api

import (
	"context"
	"time"
)

// Supported currencies. COP is the base currency: all aggregation and
// budget figures are expressed in it. USD entries carry the exchange
// rate captured at transaction time.
const (
	COP = "COP"
	USD = "USD"
)

// TransactionType distinguishes expenses from income.
type TransactionType string

// Transaction types. The stored values match the command vocabulary.
const (
	TypeExpense TransactionType = "egreso"
	TypeIncome  TransactionType = "ingreso"
)

// Transaction is a single ledger entry. Immutable once appended.
type Transaction struct {
	// ID is a short random alphanumeric identifier.
	ID string
	// Date is the calendar date of the transaction (day granularity).
	Date time.Time
	// Type is egreso or ingreso.
	Type TransactionType
	// Amount is a whole number of Currency units. Sign is not enforced.
	Amount int64
	// Currency is COP or USD.
	Currency string
	// ExchangeRate converts USD to COP, captured when the transaction
	// was recorded. Never recalculated afterwards.
	ExchangeRate int64
	// Category is a free-text label, "general" when the user omits it.
	Category string
	// Detail is a free-text note, may be empty.
	Detail string
	// Phone is the owner's phone number, the partition key for queries.
	Phone int64
	// CreatedAt is the full timestamp of record creation.
	CreatedAt time.Time
}

// Filter selects transactions from a ledger. Phone is required; the
// zero value of any other field means "any".
type Filter struct {
	Phone int64
	Type  TransactionType
	Year  int
	Month time.Month
}

// Matches reports whether tx satisfies the filter.
func (f Filter) Matches(tx Transaction) bool {
	if tx.Phone != f.Phone {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Year != 0 && tx.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && tx.Date.Month() != f.Month {
		return false
	}
	return true
}

// LedgerStore is the append-only collection of all transactions.
type LedgerStore interface {
	// Append adds a transaction to the ledger.
	Append(ctx context.Context, tx Transaction) error
	// Query returns all transactions matching the filter. An empty
	// slice (not an error) means nothing matched or the ledger is new.
	Query(ctx context.Context, f Filter) ([]Transaction, error)
}

// BudgetStore maps a phone number to its monthly budget in COP.
// Set fully replaces the prior value; no history is kept, so
// concurrent writers race last-writer-wins.
type BudgetStore interface {
	Get(ctx context.Context, phone int64) (amount int64, ok bool, err error)
	Set(ctx context.Context, phone int64, amount int64) error
}

// Sender delivers a reply to a user.
type Sender interface {
	Send(ctx context.Context, phone int64, text string) error
}
