package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketCapClass string

const (
	LargeCap         MarketCapClass = "Large Cap"
	MidCap           MarketCapClass = "Mid Cap"
	SmallCap         MarketCapClass = "Small Cap"
	UnknownMarketCap MarketCapClass = "Unknown"
)

type ValuationRow struct {
	Ticker            string
	CompanyName       string
	Quantity          int64
	AverageCost       decimal.Decimal
	CurrentPrice      decimal.NullDecimal
	Value             decimal.NullDecimal
	UnrealizedPnl     decimal.NullDecimal
	ReturnPct         decimal.NullDecimal
	Sector            string
	MarketCapClass    MarketCapClass
	PERatio           decimal.NullDecimal
	SentimentScore    decimal.NullDecimal
	RecommendedAction string
}

type Summary struct {
	TotalValue     decimal.Decimal
	RealizedProfit decimal.Decimal
	CombinedValue  decimal.Decimal
	// UnavailableRows counts rows left out of TotalValue because their price was missing.
	UnavailableRows int
}

type Report struct {
	Rows        []ValuationRow
	Summary     Summary
	GeneratedAt time.Time
}

// Bucket is a labelled value sum used for allocation breakdowns.
type Bucket struct {
	Label string
	Value decimal.Decimal
}
