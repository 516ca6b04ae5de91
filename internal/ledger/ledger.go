// Package ledger keeps the single user's positions and realized profit for one session.
package ledger

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
)

// PortfolioState is not safe for concurrent use; callers serialize access.
type PortfolioState struct {
	positions      map[string]*model.Position
	realizedProfit decimal.Decimal
	now            func() time.Time
}

type Option func(*PortfolioState)

// WithClock overrides the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(s *PortfolioState) {
		s.now = now
	}
}

func New(opts ...Option) *PortfolioState {
	s := &PortfolioState{
		positions: make(map[string]*model.Position),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ApplyTransaction books a buy or sell. Input is expected to be validated:
// price >= 0, quantity >= 1, non-empty ticker. Sells are clamped to the held
// quantity and the requested quantity is recorded in the history either way.
// A buy must not push the held quantity past MaxBuyQuantity.
func (s *PortfolioState) ApplyTransaction(ticker string, kind model.TransactionKind, price decimal.Decimal, quantity int64) model.Position {
	ticker = NormalizeTicker(ticker)

	pos, ok := s.positions[ticker]
	if !ok {
		pos = &model.Position{Ticker: ticker, DisplayName: ticker}
		s.positions[ticker] = pos
	}

	switch kind {
	case model.Buy:
		pos.Quantity += quantity
		pos.TotalCost = pos.TotalCost.Add(price.Mul(decimal.NewFromInt(quantity)))
		pos.AverageCost = pos.TotalCost.Div(decimal.NewFromInt(pos.Quantity))
	case model.Sell:
		sellQty := min(quantity, pos.Quantity)
		if sellQty > 0 {
			soldCost := pos.TotalCost
			if sellQty < pos.Quantity {
				soldCost = pos.AverageCost.Mul(decimal.NewFromInt(sellQty))
			}
			profit := price.Mul(decimal.NewFromInt(sellQty)).Sub(soldCost)
			s.realizedProfit = s.realizedProfit.Add(profit)
			pos.Quantity -= sellQty
			pos.TotalCost = pos.TotalCost.Sub(soldCost)
			if pos.Quantity == 0 {
				pos.AverageCost = decimal.Zero
				pos.TotalCost = decimal.Zero
			}
		}
	}

	y, m, d := s.now().Date()
	pos.Transactions = append(pos.Transactions, model.Transaction{
		Kind:      kind,
		Price:     price,
		Quantity:  quantity,
		Timestamp: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	})

	return clonePosition(pos)
}

// MaxBuyQuantity is the largest buy the position of ticker can still take.
func (s *PortfolioState) MaxBuyQuantity(ticker string) int64 {
	pos, ok := s.positions[NormalizeTicker(ticker)]
	if !ok {
		return math.MaxInt64
	}
	return math.MaxInt64 - pos.Quantity
}

// SetDisplayName replaces the ticker placeholder with a company name.
func (s *PortfolioState) SetDisplayName(ticker, name string) {
	pos, ok := s.positions[NormalizeTicker(ticker)]
	if !ok || name == "" {
		return
	}
	pos.DisplayName = name
}

func (s *PortfolioState) Position(ticker string) (model.Position, bool) {
	pos, ok := s.positions[NormalizeTicker(ticker)]
	if !ok {
		return model.Position{}, false
	}
	return clonePosition(pos), true
}

// Positions returns copies of every known position ordered by ticker,
// including fully sold ones.
func (s *PortfolioState) Positions() []model.Position {
	res := make([]model.Position, 0, len(s.positions))
	for _, pos := range s.positions {
		res = append(res, clonePosition(pos))
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Ticker < res[j].Ticker
	})

	return res
}

func (s *PortfolioState) RealizedProfit() decimal.Decimal {
	return s.realizedProfit
}

func (s *PortfolioState) IsEmpty() bool {
	return len(s.positions) == 0
}

func clonePosition(pos *model.Position) model.Position {
	res := *pos
	res.Transactions = append([]model.Transaction(nil), pos.Transactions...)
	return res
}
