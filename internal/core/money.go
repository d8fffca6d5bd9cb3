// Package core holds the ledger domain: transactions, their flat-file
// record form and the monthly category summary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxAmountLen = 64
	maxAmountExp = 18
)

// ParseAmount converts user input to a decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted; the
// exponent form understood by strconv.ParseFloat ("1e3") is accepted too.
// Sign is not checked: amounts are non-negative by convention only.
// Inputs longer than maxAmountLen, or whose exponent falls outside
// [-maxAmountExp, maxAmountExp], are rejected so the text form stays short.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
//	ParseAmount("1e999") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxAmountExp || exp < -maxAmountExp {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount is the persisted text form of an amount. It is exact, so
// formatting and parsing back yields the same value. Fractional digits
// of the input are kept: "150.0" stays "150.0", "25.50" stays "25.50".
func FormatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(0)
}
