package utils

import "math"

// DefaultQty is used when a quantity is missing or not a finite number
const DefaultQty = 1

// ClampQty coerces a requested quantity into a line quantity:
// nil, NaN and ±Inf become 1, anything else is floored and raised to at least 1.
// Invalid input is never rejected.
func ClampQty(v *float64) int {
	if v == nil {
		return DefaultQty
	}
	return ClampQtyValue(*v)
}

// ClampQtyValue is ClampQty for a value that is always present
func ClampQtyValue(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultQty
	}
	n := math.Floor(v)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
