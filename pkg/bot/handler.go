// Package bot interprets inbound text commands and produces reply text.
//
// Every malformed input resolves to a guidance reply, never an error:
// the transport assumes exactly one text reply per inbound message.
// Errors returned by Handle are storage failures only.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/accounting"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/money"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/txid"
)

// DefaultExchangeRate is the USD->COP rate used when none is configured.
const DefaultExchangeRate = 3900

// defaultCategory is used when a movement command omits the category.
const defaultCategory = "general"

// Config holds handler settings.
type Config struct {
	// ExchangeRate is the USD->COP rate captured on new transactions.
	// Defaults to DefaultExchangeRate.
	ExchangeRate int64
}

// Handler turns one inbound message into storage mutations and a reply.
type Handler struct {
	ledger  api.LedgerStore
	budgets api.BudgetStore
	engine  *accounting.Engine
	rate    int64
	logger  *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Handler.
func New(ledger api.LedgerStore, budgets api.BudgetStore, engine *accounting.Engine, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExchangeRate <= 0 {
		cfg.ExchangeRate = DefaultExchangeRate
	}

	return &Handler{
		ledger:  ledger,
		budgets: budgets,
		engine:  engine,
		rate:    cfg.ExchangeRate,
		logger:  logger,
		now:     time.Now,
		newID:   txid.MustNew,
	}
}

// Handle interprets one message from phone and returns the reply text.
// An empty message maps to the help reply.
func (h *Handler) Handle(ctx context.Context, phone int64, text string) (string, error) {
	parts := strings.Fields(strings.ToLower(text))
	if len(parts) == 0 {
		return msgHelp, nil
	}

	switch parts[0] {
	case "gasto", "egreso":
		return h.handleGasto(ctx, phone, parts[1:])
	case "ingreso", "entrada":
		return h.handleIngreso(ctx, phone, parts[1:])
	case "tope", "presupuesto":
		return h.handleTope(ctx, phone, parts[1:])
	case "estado", "resumen":
		return h.handleEstado(ctx, phone)
	case "ayuda":
		return msgHelp, nil
	default:
		return msgUnknown, nil
	}
}

// movement is a parsed "<monto> [USD|COP] [categoria] [detalle...]".
type movement struct {
	amount   int64
	currency string
	category string
	detail   string
}

// parseMovement interprets the arguments after a gasto/ingreso command
// word. Reports false when the amount token is not an integer. The
// amount's sign is accepted as written.
func parseMovement(args []string) (movement, bool) {
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return movement{}, false
	}

	mv := movement{amount: amount, currency: api.COP, category: defaultCategory}

	// A currency code in the second position is consumed; otherwise
	// the second token is already the category.
	next := 1
	if code := strings.ToUpper(args[1]); code == api.USD || code == api.COP {
		mv.currency = code
		next = 2
	}
	if len(args) > next {
		mv.category = args[next]
	}
	if len(args) > next+1 {
		mv.detail = strings.Join(args[next+1:], " ")
	}
	return mv, true
}

func (h *Handler) handleGasto(ctx context.Context, phone int64, args []string) (string, error) {
	if len(args) < 2 {
		return msgGastoUsage, nil
	}
	mv, ok := parseMovement(args)
	if !ok {
		return msgGastoAmount, nil
	}

	if err := h.record(ctx, phone, api.TypeExpense, mv); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Gasto registrado: " + money.Format(mv.amount, mv.currency))
	if mv.currency == api.USD {
		b.WriteString(" (" + money.Format(mv.amount*h.rate, api.COP) + ")")
	}
	b.WriteString(" en " + mv.category)
	if mv.detail != "" {
		b.WriteString(" - " + mv.detail)
	}

	status, err := h.engine.Status(ctx, phone)
	if err != nil {
		return "", err
	}
	b.WriteString("\n\n" + status.Report())

	return b.String(), nil
}

func (h *Handler) handleIngreso(ctx context.Context, phone int64, args []string) (string, error) {
	if len(args) < 2 {
		return msgIngresoUsage, nil
	}
	mv, ok := parseMovement(args)
	if !ok {
		return msgIngresoAmount, nil
	}

	if err := h.record(ctx, phone, api.TypeIncome, mv); err != nil {
		return "", err
	}

	return fmt.Sprintf("Ingreso registrado: %s en %s", money.Format(mv.amount, mv.currency), mv.category), nil
}

func (h *Handler) handleTope(ctx context.Context, phone int64, args []string) (string, error) {
	if len(args) == 0 {
		budget, ok, err := h.budgets.Get(ctx, phone)
		if err != nil {
			return "", fmt.Errorf("reading budget: %w", err)
		}
		// A stored tope of 0 reads back as unset.
		if ok && budget != 0 {
			return "Tu tope mensual actual es: " + money.Format(budget, api.COP) +
				"\nPara cambiarlo: *tope <monto>*", nil
		}
		return msgTopeUnset, nil
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return msgTopeAmount, nil
	}

	if err := h.budgets.Set(ctx, phone, amount); err != nil {
		return "", fmt.Errorf("storing budget: %w", err)
	}
	h.logger.Info("budget updated", "phone", phone, "amount", amount)

	return "Tope mensual actualizado: " + money.Format(amount, api.COP), nil
}

func (h *Handler) handleEstado(ctx context.Context, phone int64) (string, error) {
	status, err := h.engine.Status(ctx, phone)
	if err != nil {
		return "", err
	}
	return status.Report(), nil
}

// record appends one transaction to the ledger.
func (h *Handler) record(ctx context.Context, phone int64, typ api.TransactionType, mv movement) error {
	now := h.now()
	tx := api.Transaction{
		ID:           h.newID(),
		Date:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Type:         typ,
		Amount:       mv.amount,
		Currency:     mv.currency,
		ExchangeRate: h.rate,
		Category:     mv.category,
		Detail:       mv.detail,
		Phone:        phone,
		CreatedAt:    now,
	}

	if err := h.ledger.Append(ctx, tx); err != nil {
		return fmt.Errorf("recording %s: %w", typ, err)
	}

	h.logger.Info("transaction recorded",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
		"currency", tx.Currency,
		"category", tx.Category,
	)
	return nil
}
