package models

import "github.com/shopspring/decimal"

// RateProvider returns the USD value of one unit of each currency.
type RateProvider interface {
	Rates() map[Currency]decimal.Decimal
}
