package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the tokens a wallet can hold. The set is closed.
type Currency string

const (
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	USDT Currency = "USDT"
	USDC Currency = "USDC"
	DAI  Currency = "DAI"
)

// DefaultCurrency is the currency selected before the user picks one.
const DefaultCurrency = USDC

// Currencies lists every supported currency in display order.
var Currencies = []Currency{BTC, ETH, USDT, USDC, DAI}

// Valid reports whether c belongs to the supported set.
func (c Currency) Valid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCurrency accepts a currency symbol in any letter case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return c, nil
}

// Balances maps a currency to the amount held.
type Balances map[Currency]decimal.Decimal

// Get returns the balance for c; a missing entry reads as zero.
func (b Balances) Get(c Currency) decimal.Decimal {
	if v, ok := b[c]; ok {
		return v
	}
	return decimal.Zero
}

// Has reports whether there is an entry for c.
func (b Balances) Has(c Currency) bool {
	_, ok := b[c]
	return ok
}

func (b Balances) Clone() Balances {
	if b == nil {
		return nil
	}
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
