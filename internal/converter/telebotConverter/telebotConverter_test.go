package telebotConverter

import (
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func some(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReportResponse(t *testing.T) {
	report := model.Report{
		Rows: []model.ValuationRow{
			{
				Ticker: "AAPL", CompanyName: "Apple Inc", Quantity: 5, AverageCost: dec("110"),
				CurrentPrice: some("130"), Value: some("650"), UnrealizedPnl: some("100"), ReturnPct: some("18.1818"),
				Sector: "Technology", MarketCapClass: model.LargeCap, PERatio: some("29.14"),
				SentimentScore: some("0.45"), RecommendedAction: "Increase Exposure",
			},
			{Ticker: "TINY", CompanyName: "TINY", Quantity: 1, AverageCost: dec("1"), Sector: "Unknown", MarketCapClass: model.UnknownMarketCap, RecommendedAction: "No Data"},
		},
		Summary:     model.Summary{TotalValue: dec("650"), RealizedProfit: dec("-12.5"), CombinedValue: dec("637.5"), UnavailableRows: 1},
		GeneratedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}

	text := ReportResponse(report)

	assert.Contains(t, text, "2024-05-01 09:30")
	assert.Contains(t, text, "AAPL (Apple Inc)")
	assert.Contains(t, text, "Unrealized PnL: 100.00 (18.18%)")
	assert.Contains(t, text, "Technology, Large Cap, P/E 29.14")
	assert.Contains(t, text, "Sentiment: 0.450 → Increase Exposure")
	assert.Contains(t, text, "Price: N/A, value N/A")
	assert.Contains(t, text, "Sentiment: N/A → No Data")
	assert.Contains(t, text, "Realized profit: $-12.50")
	assert.Contains(t, text, "Combined value: $637.50")
	assert.Contains(t, text, "1 position(s) without price")
}

func TestReportResponseAllClosed(t *testing.T) {
	text := ReportResponse(model.Report{GeneratedAt: time.Now()})
	assert.Contains(t, text, "All positions are closed.")
	assert.NotContains(t, text, "without price")
}

func TestHistoryResponse(t *testing.T) {
	pos := model.Position{
		Ticker: "AAPL", DisplayName: "Apple Inc",
		Transactions: []model.Transaction{
			{Kind: model.Buy, Price: dec("100"), Quantity: 10, Timestamp: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
			{Kind: model.Sell, Price: dec("140"), Quantity: 20, Timestamp: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
		},
	}

	text := HistoryResponse(pos)

	assert.Contains(t, text, "1. 2024-04-01 buy 10 @ 100.00")
	assert.Contains(t, text, "2. 2024-04-02 sell 20 @ 140.00")
	assert.Contains(t, text, "position closed")
}

func TestPositionResponse(t *testing.T) {
	pos := model.Position{Ticker: "AAPL", DisplayName: "Apple Inc", Quantity: 20, AverageCost: dec("110")}
	assert.Equal(t, "AAPL (Apple Inc): 20 shares, avg cost 110.00", PositionResponse(pos))
}
