// Package core defines the record model shared by the aggregation engine
// and the storage adapters.
//
// This file contains the money parsing helpers. All amounts in the system
// are decimal quantities in one implicit currency; rounding to two places
// happens only at presentation time, never during aggregation.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative amounts are rejected: the sign of a transaction is implied by
// its type and is never stored.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CoerceAmount converts a value of unknown shape to an amount.
//
// Stored records may carry amounts as strings or numbers; one malformed
// record must not blank an entire report, so unparseable values coerce to
// zero instead of raising an error. This is the single coercion point for
// everything downstream of the storage boundary.
func CoerceAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case string:
		d, err := ParseAmount(x)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		if x < 0 {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case int64:
		if x < 0 {
			return decimal.Zero
		}
		return decimal.NewFromInt(x)
	case int:
		return CoerceAmount(int64(x))
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil || d.IsNegative() {
			return decimal.Zero
		}
		return d
	case nil:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// RoundPercent converts a ratio to an integer percentage via half-up
// rounding. Used wherever a percentage field is specified as an integer.
func RoundPercent(ratio decimal.Decimal) int {
	return int(ratio.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// Display formats an amount with two decimal places for presentation.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
