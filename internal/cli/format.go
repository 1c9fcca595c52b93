// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InfiniteWeeks is the runway value that means "never runs out".
const InfiniteWeeks = 999.0

// FormatMoney formats an AUD amount with cents and thousands separators.
// e.g., 1234.5 -> "$1,234.50", -80 -> "-$80.00"
func FormatMoney(v float64) string {
	return formatMoney(v, 2)
}

// FormatMoneyWhole formats an AUD amount rounded to whole dollars.
// e.g., 18250.6 -> "$18,251"
func FormatMoneyWhole(v float64) string {
	return formatMoney(v, 0)
}

func formatMoney(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0"
	}
	d := decimal.NewFromFloat(v).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	s := "$" + FormatNumber(whole.IntPart())
	if places > 0 {
		frac := d.Sub(whole).StringFixed(places)
		s += strings.TrimPrefix(frac, "0")
	}
	return sign + s
}

// FormatSigned formats a surplus or shortfall with an explicit sign.
// e.g., 120 -> "+$120.00", -45.5 -> "-$45.50", 0 -> "$0.00"
func FormatSigned(v float64) string {
	if v > 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatWeeks formats a week count to one decimal; the infinite runway prints as ∞.
func FormatWeeks(w float64) string {
	if w >= InfiniteWeeks {
		return "∞"
	}
	return strconv.FormatFloat(w, 'f', 1, 64)
}

// FormatHours formats weekly hours without trailing zeros.
// e.g., 1.5 -> "1.5", 2 -> "2"
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// FormatDate formats a calendar date day-first, as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// FormatShortDate formats a date as dd/mm/yy.
func FormatShortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/06")
}

// FormatLongDate formats a date as "02 January 2006".
func FormatLongDate(t time.Time) string {
	return t.Format("02 January 2006")
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
