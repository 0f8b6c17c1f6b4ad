package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CartLine represents one row of the quote cart
type CartLine struct {
	LineID      string `json:"lineId"`
	ProductID   string `json:"productId"`
	ProductSlug string `json:"productSlug"`
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl,omitempty"` // snapshot of the first product image at add time
	Qty         int    `json:"qty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Note        string `json:"note,omitempty"` // per-line note
}

// AddOptions are the optional variant fields of an add.
// Qty nil means "not provided".
type AddOptions struct {
	Size  string
	Color string
	Qty   *float64
	Note  string
}

// Quantity is a lenient quantity coming from a request body.
// Accepts JSON numbers and strings; strings are read like parseInt
// (leading integer, anything unparsable becomes NaN).
type Quantity float64

// UnmarshalJSON implements json.Unmarshaler
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity(math.NaN())
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
		*q = Quantity(ParseLeadingInt(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*q = Quantity(math.NaN())
		return nil
	}
	*q = Quantity(f)
	return nil
}

// Float returns a pointer usable as AddOptions.Qty, nil when q is nil
func (q *Quantity) Float() *float64 {
	if q == nil {
		return nil
	}
	f := float64(*q)
	return &f
}

// ParseLeadingInt reads an optional sign and leading digits after trimming
// spaces. Returns NaN when no digit is found.
func ParseLeadingInt(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// AddToCartRequest represents the request body for adding a product to the cart
// Example: {"productSlug": "overol-industrial-ripstop", "size": "M", "color": "Azul", "qty": 2}
// productId may be used instead of productSlug.
type AddToCartRequest struct {
	ProductID   string    `json:"productId,omitempty"`
	ProductSlug string    `json:"productSlug,omitempty"`
	Size        string    `json:"size,omitempty"`
	Color       string    `json:"color,omitempty"`
	Note        string    `json:"note,omitempty"`
	Qty         *Quantity `json:"qty,omitempty"`
}

// UpdateCartLineRequest represents the request body for PATCH /cart/items/:lineId
// Both fields are optional; only the ones present are applied.
// Example: {"qty": 3, "note": "Bordado con logo"}
type UpdateCartLineRequest struct {
	Qty  *Quantity `json:"qty,omitempty"`
	Note *string   `json:"note,omitempty"`
}

// CartResponse represents the cart as returned by the API
// Example response:
// {
//   "items": [
//     {
//       "lineId": "0b6f...",
//       "productId": "p-ind-001",
//       "productSlug": "overol-industrial-ripstop",
//       "ref": "ORI-IND-001",
//       "name": "Overol industrial Ripstop",
//       "qty": 2,
//       "size": "M"
//     }
//   ],
//   "totalItems": 2
// }
// Warning is set when the change could not be persisted; the cart still holds it.
type CartResponse struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"totalItems"`
	Warning    string     `json:"warning,omitempty"`
}
