// Package money formats monetary amounts the way the bot replies with them.
package money

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders integers with comma thousands separators
// ("2000000" -> "2,000,000"), the grouping used in every reply.
var printer = message.NewPrinter(language.English)

// Format renders an amount with its currency code, e.g. "$2,000,000 COP".
func Format(amount int64, currency string) string {
	return printer.Sprintf("$%d %s", amount, currency)
}

// Group renders a bare amount with thousands separators, no currency.
func Group(amount int64) string {
	return printer.Sprintf("%d", amount)
}

// Spanish month names, capitalized, indexed by time.Month.
var monthNames = [...]string{
	"",
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name for m.
func MonthName(m time.Month) string {
	return monthNames[m]
}
