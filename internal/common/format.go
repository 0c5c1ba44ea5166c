package common

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₹"

// FormatMoney formats an amount with grouping and two decimals, e.g. ₹12,500.00.
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + CurrencySymbol + humanize.FormatFloat("#,###.##", math.Abs(v))
	}
	return CurrencySymbol + humanize.FormatFloat("#,###.##", v)
}

// FormatSignedMoney formats an amount with an explicit sign.
func FormatSignedMoney(v float64) string {
	if v > 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatPct formats a percentage with two decimals.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPct formats a percentage with an explicit sign.
func FormatSignedPct(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return FormatPct(v)
}
