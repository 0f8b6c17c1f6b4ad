package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCOP formats an integer amount (in COP) as a string like "$12.500".
// Uses dot as thousands separator (common in Colombia).
func FormatCOP(amount int64) string {
	return formatGrouped(amount, "$", '.')
}

// FormatUSD formats a whole-dollar amount as "US$1,250"
func FormatUSD(amount int64) string {
	return formatGrouped(amount, "US$", ',')
}

// FormatUSDCents formats a dollar amount keeping cents when present: "US$19.99", "US$1,250"
func FormatUSDCents(amount float64) string {
	cents := int64(math.Round(amount * 100))
	if cents%100 == 0 {
		return FormatUSD(cents / 100)
	}
	frac := cents % 100
	if frac < 0 {
		frac = -frac
	}
	whole := FormatUSD(cents / 100)
	if cents < 0 && cents/100 == 0 {
		whole = "-" + whole
	}
	return fmt.Sprintf("%s.%02d", whole, frac)
}

// FormatPrice formats a product price by currency. Unknown or empty currency is COP,
// rounded to whole pesos; USD keeps cents.
func FormatPrice(amount float64, currency string) string {
	if strings.EqualFold(strings.TrimSpace(currency), "USD") {
		return FormatUSDCents(amount)
	}
	return FormatCOP(int64(math.Round(amount)))
}

func formatGrouped(amount int64, symbol string, sep byte) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	// Pre-allocate: digits + separators + symbol
	b.Grow(len(s) + len(s)/3 + len(symbol) + 1)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(symbol)

	if len(s) <= 3 {
		b.WriteString(s)
		return b.String()
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(sep)
		b.WriteString(s[i : i+3])
	}

	return b.String()
}
