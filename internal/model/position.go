package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	Buy  TransactionKind = "buy"
	Sell TransactionKind = "sell"
)

func (k TransactionKind) Valid() bool {
	return k == Buy || k == Sell
}

// Transaction is an immutable history record. Quantity is the requested size,
// not the amount actually filled after clamping.
type Transaction struct {
	Kind      TransactionKind
	Price     decimal.Decimal
	Quantity  int64
	Timestamp time.Time
}

// Position keeps TotalCost exact; AverageCost is derived from it.
type Position struct {
	Ticker       string
	DisplayName  string
	Quantity     int64
	AverageCost  decimal.Decimal
	TotalCost    decimal.Decimal
	Transactions []Transaction
}

func (p Position) CostBasis() decimal.Decimal {
	return p.TotalCost
}
