package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
)

func TestNew_ConnectionFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection timeout test in short mode")
	}

	_, err := New(Config{
		Host:     "nonexistent.invalid",
		Database: "finper",
		User:     "finper",
		Password: "wrong",
	}, nil)
	assert.Error(t, err)
}

// testStore connects to the database named by TEST_POSTGRES_HOST and
// friends, skipping the test when unset.
func testStore(t *testing.T) *Store {
	t.Helper()

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping integration test")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_POSTGRES_PORT"))

	s, err := New(Config{
		Host:     host,
		Port:     port,
		Database: envOr("TEST_POSTGRES_DB", "finper_test"),
		User:     envOr("TEST_POSTGRES_USER", "postgres"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		s.pool.Exec(ctx, "TRUNCATE transactions")
		s.pool.Exec(ctx, "TRUNCATE budgets")
		s.Close()
	})
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	base := api.Transaction{
		Date:         time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		Type:         api.TypeExpense,
		Amount:       50000,
		Currency:     api.COP,
		ExchangeRate: 3900,
		Category:     "alimentacion",
		Detail:       "almuerzo",
		Phone:        573001112222,
		CreatedAt:    time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC),
	}

	first := base
	first.ID = "aaaa1111"
	require.NoError(t, s.Append(ctx, first))

	second := base
	second.ID = "bbbb2222"
	second.Type = api.TypeIncome
	second.CreatedAt = base.CreatedAt.Add(time.Minute)
	require.NoError(t, s.Append(ctx, second))

	third := base
	third.ID = "cccc3333"
	third.Date = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	third.CreatedAt = base.CreatedAt.Add(2 * time.Minute)
	require.NoError(t, s.Append(ctx, third))

	txs, err := s.Query(ctx, api.Filter{Phone: 573001112222})
	require.NoError(t, err)
	assert.Len(t, txs, 3)

	txs, err = s.Query(ctx, api.Filter{
		Phone: 573001112222,
		Type:  api.TypeExpense,
		Year:  2025,
		Month: time.March,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "aaaa1111", txs[0].ID)
	assert.Equal(t, int64(50000), txs[0].Amount)
	assert.Equal(t, "alimentacion", txs[0].Category)
}

func TestBudget(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, ok, err := s.Get(ctx, 573001112222)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, 573001112222, 2000000))
	amount, ok, err := s.Get(ctx, 573001112222)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2000000), amount)

	// Upsert replaces the prior value.
	require.NoError(t, s.Set(ctx, 573001112222, 500000))
	amount, _, err = s.Get(ctx, 573001112222)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), amount)
}
