// Package postgres implements ledger and budget stores on PostgreSQL.
// Unlike the sheets backend, filtering happens in SQL rather than in
// memory.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
)

//go:embed 001_create_schema.sql
var migrationSQL string

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// Store implements api.LedgerStore and api.BudgetStore on PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to the database and runs migrations.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	s := &Store{pool: pool, logger: logger}
	if err := s.runMigrations(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	s.logger.Info("migrations completed")
	return nil
}

// Append inserts one transaction.
func (s *Store) Append(ctx context.Context, tx api.Transaction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			id, date, type, amount, currency, exchange_rate,
			category, detail, phone, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		tx.ID,
		tx.Date,
		string(tx.Type),
		tx.Amount,
		tx.Currency,
		tx.ExchangeRate,
		tx.Category,
		tx.Detail,
		tx.Phone,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// Query returns the transactions matching the filter, pushing the
// filtering into SQL.
func (s *Store) Query(ctx context.Context, f api.Filter) ([]api.Transaction, error) {
	query := `
		SELECT id, date, type, amount, currency, exchange_rate,
		       category, detail, phone, created_at
		FROM transactions
		WHERE phone = $1`
	args := []any{f.Phone}

	if f.Type != "" {
		args = append(args, string(f.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		query += fmt.Sprintf(" AND EXTRACT(YEAR FROM date) = $%d", len(args))
	}
	if f.Month != 0 {
		args = append(args, int(f.Month))
		query += fmt.Sprintf(" AND EXTRACT(MONTH FROM date) = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []api.Transaction
	for rows.Next() {
		var tx api.Transaction
		var typ string
		if err := rows.Scan(
			&tx.ID, &tx.Date, &typ, &tx.Amount, &tx.Currency,
			&tx.ExchangeRate, &tx.Category, &tx.Detail, &tx.Phone, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.Type = api.TransactionType(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return out, nil
}

// Get returns the stored budget for phone.
func (s *Store) Get(ctx context.Context, phone int64) (int64, bool, error) {
	var amount int64
	err := s.pool.QueryRow(ctx, `SELECT amount FROM budgets WHERE phone = $1`, phone).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading budget: %w", err)
	}
	return amount, true, nil
}

// Set upserts the budget for phone, replacing any prior value.
func (s *Store) Set(ctx context.Context, phone int64, amount int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO budgets (phone, amount)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = NOW()
	`, phone, amount)
	if err != nil {
		return fmt.Errorf("storing budget: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
}
