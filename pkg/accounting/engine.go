// Package accounting aggregates monthly spend and computes budget status.
package accounting

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
)

// Engine computes monthly totals and budget status from the stores.
// It caches nothing between calls: every computation re-reads current
// store state.
type Engine struct {
	ledger  api.LedgerStore
	budgets api.BudgetStore
	now     func() time.Time
}

// New creates an Engine using the real clock.
func New(ledger api.LedgerStore, budgets api.BudgetStore) *Engine {
	return NewWithClock(ledger, budgets, time.Now)
}

// NewWithClock creates an Engine with an injectable clock. Status always
// reports on the calendar month of now().
func NewWithClock(ledger api.LedgerStore, budgets api.BudgetStore, now func() time.Time) *Engine {
	return &Engine{ledger: ledger, budgets: budgets, now: now}
}

// MonthlyExpenses sums the expense transactions of phone for the given
// period, converted to COP, and breaks the total down by category.
// USD entries convert at the rate captured on each record.
func (e *Engine) MonthlyExpenses(ctx context.Context, phone int64, year int, month time.Month) (int64, map[string]int64, error) {
	txs, err := e.ledger.Query(ctx, api.Filter{
		Phone: phone,
		Type:  api.TypeExpense,
		Year:  year,
		Month: month,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("querying expenses: %w", err)
	}

	var total int64
	byCategory := make(map[string]int64)
	for _, tx := range txs {
		cop := ToCOP(tx)
		total += cop
		byCategory[tx.Category] += cop
	}
	return total, byCategory, nil
}

// Status computes the budget status for the current calendar month.
func (e *Engine) Status(ctx context.Context, phone int64) (Status, error) {
	now := e.now()
	spent, byCategory, err := e.MonthlyExpenses(ctx, phone, now.Year(), now.Month())
	if err != nil {
		return Status{}, err
	}

	s := Status{
		Year:       now.Year(),
		Month:      now.Month(),
		Spent:      spent,
		ByCategory: byCategory,
	}

	budget, ok, err := e.budgets.Get(ctx, phone)
	if err != nil {
		return Status{}, fmt.Errorf("reading budget: %w", err)
	}
	if !ok {
		return s, nil
	}

	s.HasBudget = true
	s.Budget = budget
	s.Remaining = budget - spent
	if budget > 0 {
		s.Percentage = math.Round(float64(spent)/float64(budget)*1000) / 10
	}
	return s, nil
}

// ToCOP converts a transaction amount to COP using the exchange rate
// captured on the record.
func ToCOP(tx api.Transaction) int64 {
	if tx.Currency == api.USD {
		return tx.Amount * tx.ExchangeRate
	}
	return tx.Amount
}
