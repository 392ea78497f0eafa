// Package core holds the ledger domain types and display helpers.
//
// Amounts are float64 rupees, matching the persisted documents. Rounding is
// applied only when formatting for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const CurrencySymbol = "₹"

// FormatAmount renders a value with Indian digit grouping and at most two
// fraction digits, trailing zeros dropped.
//
// Examples:
//
//	FormatAmount(1234567.891) -> "12,34,567.89"
//	FormatAmount(100.5)       -> "100.5"
//	FormatAmount(-2500)       -> "-2,500"
func FormatAmount(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	s := d.String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupIndian(intPart))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatMoney is FormatAmount with the currency prefix, e.g. "₹ 1,500".
func FormatMoney(v float64) string {
	return CurrencySymbol + " " + FormatAmount(v)
}

// groupIndian places the first separator after three digits from the
// right and every two digits after that.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
