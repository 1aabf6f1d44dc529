package handler

import "github.com/shopspring/decimal"

// Request DTOs carry money as float64; the domain works in decimal.

func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
