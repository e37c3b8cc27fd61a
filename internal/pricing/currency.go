package pricing

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency converts and formats base-unit (USD) amounts for display. Converted
// values are presentation only and never stored.
type Currency struct {
	Code        string
	Symbol      string
	Rate        float64 // display units per USD
	Locale      language.Tag
	SymbolAfter bool
}

var (
	USD = Currency{Code: "USD", Symbol: "$", Rate: 1, Locale: language.AmericanEnglish}
	VND = Currency{Code: "VND", Symbol: "₫", Rate: 26000, Locale: language.Vietnamese, SymbolAfter: true}
)

// Currencies lists the supported display currencies.
func Currencies() []Currency {
	return []Currency{USD, VND}
}

// CurrencyByCode looks up a display currency, case-insensitively.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range Currencies() {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Currency{}, false
}

// Convert applies the rate and rounds to whole display units.
func (c Currency) Convert(amount int) int64 {
	return int64(math.Round(float64(amount) * c.Rate))
}

// Format converts amount and renders it with the locale's digit grouping.
func (c Currency) Format(amount int) string {
	n := message.NewPrinter(c.Locale).Sprintf("%d", c.Convert(amount))
	if c.SymbolAfter {
		return n + c.Symbol
	}
	return c.Symbol + n
}
