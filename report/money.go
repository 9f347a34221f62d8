package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatMoney renders a decimal amount with thousands separators and two
// fraction digits for document display.
func formatMoney(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.InexactFloat64())
}
