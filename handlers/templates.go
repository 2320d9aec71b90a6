package handlers

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

// FuncMap returns the helpers available to the HTML templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{"usd": USD}
}

// USD formats a decimal amount as US dollars with thousands separators,
// e.g. 1234567.8 -> "$1,234,567.80".
func USD(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(whole[i])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
