// Package valuation combines ledger positions with market quotes.
//
// Every function here is pure: the same inputs always produce the same rows,
// and nothing is cached between refreshes.
package valuation

import (
	"sort"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
)

var (
	largeCapThreshold = decimal.New(10, 9)
	midCapThreshold   = decimal.New(2, 9)
	hundred           = decimal.NewFromInt(100)
)

// Valuate builds the row for one position. Values that depend on a missing
// price stay invalid instead of becoming zero.
func Valuate(position model.Position, quote model.Quote) model.ValuationRow {
	row := model.ValuationRow{
		Ticker:         position.Ticker,
		CompanyName:    position.DisplayName,
		Quantity:       position.Quantity,
		AverageCost:    position.AverageCost,
		CurrentPrice:   quote.Price,
		Sector:         quote.Sector,
		MarketCapClass: ClassifyMarketCap(quote.MarketCap),
		PERatio:        quote.PERatio,
	}

	if row.CompanyName == "" {
		row.CompanyName = position.Ticker
	}
	if row.Sector == "" {
		row.Sector = model.UnknownSector
	}

	if !quote.Price.Valid {
		return row
	}

	qty := decimal.NewFromInt(position.Quantity)
	price := quote.Price.Decimal

	value := qty.Mul(price)
	row.Value = valid(value)

	costBasis := position.CostBasis()
	pnl := value.Sub(costBasis)
	row.UnrealizedPnl = valid(pnl)

	if costBasis.IsPositive() {
		row.ReturnPct = valid(pnl.Div(costBasis).Mul(hundred))
	}

	return row
}

// ClassifyMarketCap buckets a market capitalization; lower bounds are inclusive.
func ClassifyMarketCap(marketCap decimal.NullDecimal) model.MarketCapClass {
	switch {
	case !marketCap.Valid:
		return model.UnknownMarketCap
	case marketCap.Decimal.GreaterThanOrEqual(largeCapThreshold):
		return model.LargeCap
	case marketCap.Decimal.GreaterThanOrEqual(midCapThreshold):
		return model.MidCap
	default:
		return model.SmallCap
	}
}

// ValuateAll values every held position in the given order. Fully sold
// positions are left out; a ticker without a quote is valued from an empty one.
func ValuateAll(positions []model.Position, quotes map[string]model.Quote) []model.ValuationRow {
	rows := make([]model.ValuationRow, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity == 0 {
			continue
		}

		quote, ok := quotes[pos.Ticker]
		if !ok {
			quote = model.EmptyQuote()
		}

		rows = append(rows, Valuate(pos, quote))
	}
	return rows
}

// Summarize reduces rows into portfolio totals. Rows without a value are
// omitted from TotalValue and counted in UnavailableRows.
func Summarize(rows []model.ValuationRow, realizedProfit decimal.Decimal) model.Summary {
	summary := model.Summary{
		TotalValue:     decimal.Zero,
		RealizedProfit: realizedProfit,
	}

	for _, row := range rows {
		if !row.Value.Valid {
			summary.UnavailableRows++
			continue
		}
		summary.TotalValue = summary.TotalValue.Add(row.Value.Decimal)
	}

	summary.CombinedValue = summary.TotalValue.Add(realizedProfit)

	return summary
}

// SectorAllocation sums available values per sector, largest first.
func SectorAllocation(rows []model.ValuationRow) []model.Bucket {
	return groupValues(rows, func(row model.ValuationRow) string {
		return row.Sector
	})
}

// MarketCapDistribution sums available values per market-cap class, largest first.
func MarketCapDistribution(rows []model.ValuationRow) []model.Bucket {
	return groupValues(rows, func(row model.ValuationRow) string {
		return string(row.MarketCapClass)
	})
}

func groupValues(rows []model.ValuationRow, key func(model.ValuationRow) string) []model.Bucket {
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if !row.Value.Valid {
			continue
		}
		label := key(row)
		sums[label] = sums[label].Add(row.Value.Decimal)
	}

	res := make([]model.Bucket, 0, len(sums))
	for label, value := range sums {
		res = append(res, model.Bucket{Label: label, Value: value})
	}

	sort.Slice(res, func(i, j int) bool {
		if c := res[i].Value.Cmp(res[j].Value); c != 0 {
			return c > 0
		}
		return res[i].Label < res[j].Label
	})

	return res
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
