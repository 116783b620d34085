package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zjrosen/backoffice/internal/config"
)

// money formats amounts for record list columns using the configured locale.
type money struct {
	printer  *message.Printer
	currency string
}

func newMoney(d config.DisplayConfig) money {
	tag, err := language.Parse(d.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return money{printer: message.NewPrinter(tag), currency: d.Currency}
}

// amount parses a record value as a number.
func amount(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Format renders v as "-$1,234.50". Values that are not numbers are shown
// as they are.
func (m money) Format(v any) string {
	f, ok := amount(v)
	if !ok {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + m.currency + m.printer.Sprintf("%.2f", f)
}

// Negative reports whether v is a number below zero.
func (m money) Negative(v any) bool {
	f, ok := amount(v)
	return ok && f < 0
}
