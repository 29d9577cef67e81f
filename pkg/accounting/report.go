package accounting

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/money"
)

// Status is the derived monthly budget report. It is recomputed on
// every request and never persisted.
type Status struct {
	Year  int
	Month time.Month

	// Spent is the month's expense total in COP.
	Spent int64
	// ByCategory maps each category with at least one expense to its
	// COP total.
	ByCategory map[string]int64

	// HasBudget reports whether a budget is configured. The remaining
	// fields are only meaningful when it is true.
	HasBudget bool
	Budget    int64
	// Percentage is spent/budget*100 rounded to one decimal, 0 when
	// the budget is 0.
	Percentage float64
	// Remaining is budget minus spent; negative means over budget.
	Remaining int64
}

// Report renders the status as the multi-line reply text.
func (s Status) Report() string {
	lines := []string{
		fmt.Sprintf("Estado del presupuesto - %s %d", money.MonthName(s.Month), s.Year),
	}

	if !s.HasBudget {
		lines = append(lines,
			"Gastado este mes: "+money.Format(s.Spent, api.COP),
			"",
			"No tienes un tope mensual configurado.",
			"Usa *tope <monto>* para definirlo.",
		)
	} else {
		lines = append(lines,
			"Tope mensual: "+money.Format(s.Budget, api.COP),
			fmt.Sprintf("Gastado: %s (%s%%)", money.Format(s.Spent, api.COP), s.percentage()),
		)
		if s.Remaining >= 0 {
			lines = append(lines, "Disponible: "+money.Format(s.Remaining, api.COP))
		} else {
			lines = append(lines, "EXCEDIDO por: "+money.Format(-s.Remaining, api.COP))
		}
	}

	if len(s.ByCategory) > 0 {
		lines = append(lines, "", "Por categoria:")
		cats := make([]string, 0, len(s.ByCategory))
		for cat := range s.ByCategory {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			lines = append(lines, fmt.Sprintf("  - %s: %s", cat, money.Format(s.ByCategory[cat], api.COP)))
		}
	}

	return strings.Join(lines, "\n")
}

// percentage renders with one decimal when a positive budget exists
// ("93.8", "0.0") and as a plain "0" for a zero budget.
func (s Status) percentage() string {
	if s.Budget <= 0 {
		return "0"
	}
	return strconv.FormatFloat(s.Percentage, 'f', 1, 64)
}
