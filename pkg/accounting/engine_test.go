package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/store/memory"
)

const testPhone = int64(573001112222)

var testNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func newTestEngine() (*Engine, *memory.Store) {
	store := memory.New()
	engine := NewWithClock(store, store, func() time.Time { return testNow })
	return engine, store
}

func expense(amount int64, currency string, rate int64, category string, date time.Time) api.Transaction {
	return api.Transaction{
		ID:           "test1234",
		Date:         date,
		Type:         api.TypeExpense,
		Amount:       amount,
		Currency:     currency,
		ExchangeRate: rate,
		Category:     category,
		Phone:        testPhone,
		CreatedAt:    date,
	}
}

func TestMonthlyExpenses(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	march := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, expense(50000, api.COP, 3900, "alimentacion", march)))
	require.NoError(t, store.Append(ctx, expense(30000, api.COP, 3900, "alimentacion", march)))
	require.NoError(t, store.Append(ctx, expense(20, api.USD, 3900, "tecnologia", march)))
	// Outside the period and wrong type: both excluded.
	require.NoError(t, store.Append(ctx, expense(99999, api.COP, 3900, "alimentacion", february)))
	income := expense(3000000, api.COP, 3900, "salario", march)
	income.Type = api.TypeIncome
	require.NoError(t, store.Append(ctx, income))
	// Another user's expense: excluded.
	other := expense(7777, api.COP, 3900, "alimentacion", march)
	other.Phone = 573009998888
	require.NoError(t, store.Append(ctx, other))

	total, byCategory, err := engine.MonthlyExpenses(ctx, testPhone, 2025, time.March)
	require.NoError(t, err)

	// 50000 + 30000 + 20*3900
	assert.Equal(t, int64(158000), total)
	assert.Equal(t, map[string]int64{
		"alimentacion": 80000,
		"tecnologia":   78000,
	}, byCategory)
}

func TestMonthlyExpenses_Empty(t *testing.T) {
	engine, _ := newTestEngine()

	total, byCategory, err := engine.MonthlyExpenses(context.Background(), testPhone, 2025, time.March)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, byCategory)
}

func TestStatus_NoBudget(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()
	require.NoError(t, store.Append(ctx, expense(50000, api.COP, 3900, "alimentacion", testNow)))

	status, err := engine.Status(ctx, testPhone)
	require.NoError(t, err)

	assert.False(t, status.HasBudget)
	assert.Equal(t, int64(50000), status.Spent)
	assert.Equal(t, 2025, status.Year)
	assert.Equal(t, time.March, status.Month)
}

func TestStatus_WithBudget(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()
	require.NoError(t, store.Set(ctx, testPhone, 2000000))
	require.NoError(t, store.Append(ctx, expense(500000, api.COP, 3900, "alimentacion", testNow)))

	status, err := engine.Status(ctx, testPhone)
	require.NoError(t, err)

	assert.True(t, status.HasBudget)
	assert.Equal(t, int64(2000000), status.Budget)
	assert.Equal(t, int64(500000), status.Spent)
	assert.InDelta(t, 25.0, status.Percentage, 0.001)
	assert.Equal(t, int64(1500000), status.Remaining)
}

func TestStatus_OverBudget(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()
	require.NoError(t, store.Set(ctx, testPhone, 2000000))
	require.NoError(t, store.Append(ctx, expense(2500000, api.COP, 3900, "hogar", testNow)))

	status, err := engine.Status(ctx, testPhone)
	require.NoError(t, err)

	assert.Equal(t, int64(-500000), status.Remaining)
	assert.Contains(t, status.Report(), "EXCEDIDO por: $500,000 COP")
}

func TestStatus_ZeroBudget(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()
	require.NoError(t, store.Set(ctx, testPhone, 0))
	require.NoError(t, store.Append(ctx, expense(10000, api.COP, 3900, "hogar", testNow)))

	status, err := engine.Status(ctx, testPhone)
	require.NoError(t, err)

	// Division by zero must not fail; percentage stays 0.
	assert.True(t, status.HasBudget)
	assert.Zero(t, status.Percentage)
	assert.Contains(t, status.Report(), "(0%)")
}

func TestStatus_PercentageRounding(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()
	require.NoError(t, store.Set(ctx, testPhone, 3000000))
	require.NoError(t, store.Append(ctx, expense(1000000, api.COP, 3900, "hogar", testNow)))

	status, err := engine.Status(ctx, testPhone)
	require.NoError(t, err)

	// 1/3 of the budget: 33.333... rounds to one decimal.
	assert.InDelta(t, 33.3, status.Percentage, 0.001)
	assert.Contains(t, status.Report(), "(33.3%)")
}

func TestReport_NoBudget(t *testing.T) {
	status := Status{
		Year:  2025,
		Month: time.March,
		Spent: 50000,
	}

	want := "Estado del presupuesto - Marzo 2025\n" +
		"Gastado este mes: $50,000 COP\n" +
		"\n" +
		"No tienes un tope mensual configurado.\n" +
		"Usa *tope <monto>* para definirlo."
	assert.Equal(t, want, status.Report())
}

func TestReport_WithBudget(t *testing.T) {
	status := Status{
		Year:       2025,
		Month:      time.March,
		Spent:      0,
		HasBudget:  true,
		Budget:     2000000,
		Percentage: 0,
		Remaining:  2000000,
	}

	want := "Estado del presupuesto - Marzo 2025\n" +
		"Tope mensual: $2,000,000 COP\n" +
		"Gastado: $0 COP (0.0%)\n" +
		"Disponible: $2,000,000 COP"
	assert.Equal(t, want, status.Report())
}

func TestReport_CategoriesSorted(t *testing.T) {
	status := Status{
		Year:  2025,
		Month: time.March,
		Spent: 60000,
		ByCategory: map[string]int64{
			"z": 10000,
			"a": 20000,
			"m": 30000,
		},
	}

	want := "\nPor categoria:\n" +
		"  - a: $20,000 COP\n" +
		"  - m: $30,000 COP\n" +
		"  - z: $10,000 COP"
	assert.Contains(t, status.Report(), want)
}

func TestToCOP(t *testing.T) {
	tests := []struct {
		name string
		tx   api.Transaction
		want int64
	}{
		{"cop unchanged", api.Transaction{Amount: 50000, Currency: api.COP, ExchangeRate: 3900}, 50000},
		{"usd converted", api.Transaction{Amount: 20, Currency: api.USD, ExchangeRate: 3900}, 78000},
		{"usd uses captured rate", api.Transaction{Amount: 10, Currency: api.USD, ExchangeRate: 4100}, 41000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCOP(tt.tx))
		})
	}
}
