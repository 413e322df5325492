// Package utils provides formatting helpers for loanlens output.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols maps ISO codes to display prefixes.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"MXN": "MX$",
}

// CurrencyPrefix returns the display prefix for an ISO currency code.
// Unknown codes are shown as the code followed by a space.
func CurrencyPrefix(currency string) string {
	code := strings.ToUpper(currency)
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	if code == "" {
		return ""
	}
	return code + " "
}

// FormatMoney formats an amount with thousands separators and two decimals.
// e.g., 1234567.891, "USD" → "$1,234,567.89"; -50, "EUR" → "-€50.00"
func FormatMoney(amount float64, currency string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	prefix := CurrencyPrefix(currency)
	if d.IsNegative() {
		return "-" + prefix + groupThousands(d.Abs().StringFixed(2))
	}
	return prefix + groupThousands(d.StringFixed(2))
}

// FormatMoneyCompact formats large amounts with K / M / B suffixes.
// e.g., 1500000, "USD" → "$1.5M"
func FormatMoneyCompact(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	prefix := sign + CurrencyPrefix(currency)

	switch {
	case amount >= 1e9:
		return fmt.Sprintf("%s%sB", prefix, formatWithDecimals(amount/1e9))
	case amount >= 1e6:
		return fmt.Sprintf("%s%sM", prefix, formatWithDecimals(amount/1e6))
	case amount >= 1e3:
		return fmt.Sprintf("%s%sK", prefix, formatWithDecimals(amount/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatRate formats an annual rate in percent. e.g., 12.675 → "12.68%"
func FormatRate(pct float64) string {
	return decimal.NewFromFloat(pct).Round(2).StringFixed(2) + "%"
}

// FormatPct formats a percentage change with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatBps formats a spread in basis points. e.g., 250 → "250 bps"
func FormatBps(bps float64) string {
	return formatWithDecimals(bps) + " bps"
}

// groupThousands inserts commas into the integer part of a fixed-point string.
func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		if frac == "" {
			return intPart
		}
		return intPart + "." + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
