// Package telemetry holds the event bus sinks: structured logging,
// prometheus metrics, an in-memory recorder and a websocket stream for
// spectators.
package telemetry

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// Money formats amounts with the digit grouping of a locale.
type Money struct {
	printer *message.Printer
}

// NewMoney returns a formatter for tag.
func NewMoney(tag language.Tag) Money {
	return Money{printer: message.NewPrinter(tag)}
}

// ParseLocale returns a formatter for a BCP 47 locale, falling back to
// English when the locale does not parse.
func ParseLocale(locale string) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return NewMoney(tag)
}

// Format renders amount as dollars, e.g. "$1,500" or "-$50".
func (m Money) Format(amount int) string {
	if m.printer == nil {
		m = NewMoney(language.English)
	}
	if amount < 0 {
		return "-" + m.printer.Sprintf("$%d", -amount)
	}
	return m.printer.Sprintf("$%d", amount)
}

// moneyEvents carry an amount of money rather than a count or a position.
var moneyEvents = map[rules.EventType]bool{
	rules.EventPassedGo:          true,
	rules.EventPurchaseOffered:   true,
	rules.EventPropertyPurchased: true,
	rules.EventPurchaseDeclined:  true,
	rules.EventRentPaid:          true,
	rules.EventMortgaged:         true,
	rules.EventUnmortgaged:       true,
	rules.EventPropertySold:      true,
	rules.EventTaxPaid:           true,
	rules.EventMoneyPaid:         true,
	rules.EventMoneyReceived:     true,
	rules.EventRepairsAssessed:   true,
	rules.EventBailPaid:          true,
}

// IsMoney reports whether events of type t carry a money amount.
func IsMoney(t rules.EventType) bool {
	return moneyEvents[t]
}
