package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/accounting"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/bot"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/client"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/config"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/server"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/store/csvfile"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/store/jsonfile"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/store/memory"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/store/postgres"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/store/sheets"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/whatsapp"
)

// runServer starts the webhook server and blocks until shutdown.
func runServer(logger *slog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("configuration loaded",
		"ledger_store", cfg.LedgerStore,
		"port", cfg.Port,
		"usd_cop_rate", cfg.USDCOPRate,
	)

	ledger, budgets, cleanup, err := buildStores(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing stores: %w", err)
	}
	defer cleanup()

	engine := accounting.New(ledger, budgets)
	handler := bot.New(ledger, budgets, engine, bot.Config{
		ExchangeRate: cfg.USDCOPRate,
	}, logger.With("component", "bot"))

	sender := whatsapp.New(whatsapp.Config{
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.PhoneNumberID,
	}, logger.With("component", "whatsapp"))

	srv := server.New(cfg.VerifyToken, handler, sender, logger.With("component", "server"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// buildStores creates the ledger and budget stores for the configured
// backend. The returned cleanup releases any held resources.
func buildStores(cfg config.Config, logger *slog.Logger) (api.LedgerStore, api.BudgetStore, func(), error) {
	noop := func() {}

	switch cfg.LedgerStore {
	case "sheets":
		httpClient, err := client.New(config.ClientSecretFile, config.TokenFile, gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("creating google client: %w", err)
		}
		ledger, err := sheets.New(httpClient, sheets.Config{
			SpreadsheetID:    cfg.GSheetsID,
			SpreadsheetTitle: cfg.GSheetsTitle,
			SheetName:        cfg.GSheetsName,
		}, logger.With("component", "sheets_ledger"))
		if err != nil {
			return nil, nil, nil, err
		}
		budgets := jsonfile.New(cfg.BudgetsFile, logger.With("component", "budgets"))
		return ledger, budgets, noop, nil

	case "postgres":
		store, err := postgres.New(postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger.With("component", "postgres"))
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil

	case "csv":
		ledger, err := csvfile.New(cfg.LedgerFile, logger.With("component", "csv_ledger"))
		if err != nil {
			return nil, nil, nil, err
		}
		budgets := jsonfile.New(cfg.BudgetsFile, logger.With("component", "budgets"))
		cleanup := func() {
			if err := ledger.Close(); err != nil {
				logger.Warn("closing csv ledger", "error", err)
			}
		}
		return ledger, budgets, cleanup, nil

	case "memory":
		store := memory.New()
		return store, store, noop, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown ledger store %q", cfg.LedgerStore)
	}
}
