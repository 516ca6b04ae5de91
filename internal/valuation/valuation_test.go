package valuation

import (
	"testing"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func some(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func position(ticker string, qty int64, avg string) model.Position {
	return model.Position{
		Ticker:      ticker,
		DisplayName: ticker + " Corp",
		Quantity:    qty,
		AverageCost: dec(avg),
		TotalCost:   dec(avg).Mul(decimal.NewFromInt(qty)),
	}
}

func TestValuate(t *testing.T) {
	quote := model.Quote{
		Price:     some("130"),
		Sector:    "Technology",
		MarketCap: some("2500000000000"),
		PERatio:   some("28.4"),
	}

	row := Valuate(position("AAPL", 5, "110"), quote)

	assert.Equal(t, "AAPL", row.Ticker)
	assert.Equal(t, "AAPL Corp", row.CompanyName)
	assert.Equal(t, int64(5), row.Quantity)
	require.True(t, row.Value.Valid)
	assert.True(t, dec("650").Equal(row.Value.Decimal))
	require.True(t, row.UnrealizedPnl.Valid)
	assert.True(t, dec("100").Equal(row.UnrealizedPnl.Decimal))
	require.True(t, row.ReturnPct.Valid)
	assert.Equal(t, "18.18", row.ReturnPct.Decimal.StringFixed(2))
	assert.Equal(t, "Technology", row.Sector)
	assert.Equal(t, model.LargeCap, row.MarketCapClass)
	assert.True(t, dec("28.4").Equal(row.PERatio.Decimal))
}

func TestValuateIsIdempotent(t *testing.T) {
	pos := position("X", 3, "10")
	quote := model.Quote{Price: some("12"), Sector: "Energy", MarketCap: some("5e9")}

	assert.Equal(t, Valuate(pos, quote), Valuate(pos, quote))
}

func TestValuateMissingPrice(t *testing.T) {
	row := Valuate(position("X", 3, "10"), model.Quote{})

	assert.False(t, row.CurrentPrice.Valid)
	assert.False(t, row.Value.Valid)
	assert.False(t, row.UnrealizedPnl.Valid)
	assert.False(t, row.ReturnPct.Valid)
	assert.Equal(t, model.UnknownSector, row.Sector)
	assert.Equal(t, model.UnknownMarketCap, row.MarketCapClass)
}

func TestValuateZeroCostBasis(t *testing.T) {
	row := Valuate(position("GIFT", 4, "0"), model.Quote{Price: some("5")})

	assert.True(t, dec("20").Equal(row.Value.Decimal))
	assert.True(t, dec("20").Equal(row.UnrealizedPnl.Decimal))
	assert.False(t, row.ReturnPct.Valid)
}

func TestValuateZeroPriceIsAValue(t *testing.T) {
	row := Valuate(position("BUST", 2, "10"), model.Quote{Price: some("0")})

	require.True(t, row.Value.Valid)
	assert.True(t, row.Value.Decimal.IsZero())
	assert.Equal(t, "-100", row.ReturnPct.Decimal.String())
}

func TestClassifyMarketCap(t *testing.T) {
	tests := []struct {
		name      string
		marketCap decimal.NullDecimal
		expected  model.MarketCapClass
	}{
		{"missing", decimal.NullDecimal{}, model.UnknownMarketCap},
		{"just below mid", some("1999000000"), model.SmallCap},
		{"mid lower bound", some("2000000000"), model.MidCap},
		{"inside mid", some("9999999999.99"), model.MidCap},
		{"large lower bound", some("10000000000"), model.LargeCap},
		{"zero", some("0"), model.SmallCap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyMarketCap(tt.marketCap))
		})
	}
}

func TestValuateAllSkipsClosedPositions(t *testing.T) {
	positions := []model.Position{
		position("AAA", 1, "1"),
		position("BBB", 0, "0"),
		position("CCC", 2, "3"),
	}
	quotes := map[string]model.Quote{"AAA": {Price: some("2")}}

	rows := ValuateAll(positions, quotes)

	require.Len(t, rows, 2)
	assert.Equal(t, "AAA", rows[0].Ticker)
	assert.Equal(t, "CCC", rows[1].Ticker)
	assert.False(t, rows[1].Value.Valid)
}

func TestSummarizeOmitsUnavailableValues(t *testing.T) {
	rows := []model.ValuationRow{
		{Ticker: "A", Value: some("100.50")},
		{Ticker: "B"},
		{Ticker: "C", Value: some("49.50")},
	}

	summary := Summarize(rows, dec("450"))

	assert.True(t, dec("150").Equal(summary.TotalValue))
	assert.True(t, dec("450").Equal(summary.RealizedProfit))
	assert.True(t, dec("600").Equal(summary.CombinedValue))
	assert.Equal(t, 1, summary.UnavailableRows)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, dec("-20"))

	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, dec("-20").Equal(summary.CombinedValue))
}

func TestAllocations(t *testing.T) {
	rows := []model.ValuationRow{
		{Sector: "Technology", MarketCapClass: model.LargeCap, Value: some("300")},
		{Sector: "Energy", MarketCapClass: model.SmallCap, Value: some("50")},
		{Sector: "Technology", MarketCapClass: model.MidCap, Value: some("100")},
		{Sector: "Health", MarketCapClass: model.LargeCap},
	}

	sectors := SectorAllocation(rows)
	require.Len(t, sectors, 2)
	assert.Equal(t, "Technology", sectors[0].Label)
	assert.True(t, dec("400").Equal(sectors[0].Value))
	assert.Equal(t, "Energy", sectors[1].Label)

	caps := MarketCapDistribution(rows)
	require.Len(t, caps, 3)
	assert.Equal(t, string(model.LargeCap), caps[0].Label)
	assert.True(t, dec("300").Equal(caps[0].Value))
	assert.Equal(t, string(model.MidCap), caps[1].Label)
	assert.Equal(t, string(model.SmallCap), caps[2].Label)
}
