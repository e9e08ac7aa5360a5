// Package core holds the asset, recommendation and history types shared by the
// API client and the view controller.
//
// This file contains amount parsing and the number formatting used on every
// rendered total, table cell and percentage.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a user-entered decimal string into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents, thousands separators and zero are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatShare renders part as a percentage of total with one decimal, e.g.
// "66.7%". A zero total yields "0.0%".
func FormatShare(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0%"
	}
	return part.Div(total).Mul(hundred).StringFixed(1) + "%"
}

// DiffColor maps a signed difference onto the colour used to show it:
// surplus to buy is green, excess to sell is red.
func DiffColor(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "green"
	case -1:
		return "red"
	default:
		return "inherit"
	}
}
