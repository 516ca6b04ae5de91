package model

import "github.com/shopspring/decimal"

const UnknownSector = "Unknown"

// Quote holds market data for one ticker. Any numeric field may be missing.
type Quote struct {
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
	Sector    string              `json:"sector"`
	MarketCap decimal.NullDecimal `json:"marketCap"`
	PERatio   decimal.NullDecimal `json:"peRatio"`
}

// EmptyQuote is used when the provider could not be reached at all.
func EmptyQuote() Quote {
	return Quote{Sector: UnknownSector}
}
