package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

func ReportResponse(report model.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 Portfolio on %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04")))

	if len(report.Rows) == 0 {
		sb.WriteString("All positions are closed.\n\n")
	}

	for _, row := range report.Rows {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", row.Ticker, row.CompanyName))
		sb.WriteString(fmt.Sprintf("   ▸ Qty: %d, avg cost %s\n", row.Quantity, row.AverageCost.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("   ▸ Price: %s, value %s\n", optional(row.CurrentPrice, 2), optional(row.Value, 2)))
		sb.WriteString(fmt.Sprintf("   ▸ Unrealized PnL: %s (%s)\n", optional(row.UnrealizedPnl, 2), percent(row.ReturnPct)))
		sb.WriteString(fmt.Sprintf("   ▸ %s, %s, P/E %s\n", row.Sector, row.MarketCapClass, optional(row.PERatio, 2)))
		sb.WriteString(fmt.Sprintf("   ▸ Sentiment: %s → %s\n\n", optional(row.SentimentScore, 3), row.RecommendedAction))
	}

	sb.WriteString(SummaryResponse(report.Summary))

	return sb.String()
}

func SummaryResponse(summary model.Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("💰 Total market value: $%s\n", summary.TotalValue.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("✅ Realized profit: $%s\n", summary.RealizedProfit.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("📈 Combined value: $%s\n", summary.CombinedValue.StringFixed(2)))
	if summary.UnavailableRows > 0 {
		sb.WriteString(fmt.Sprintf("⚠️ %d position(s) without price are not counted\n", summary.UnavailableRows))
	}

	return sb.String()
}

func PositionResponse(pos model.Position) string {
	if pos.Quantity == 0 {
		return fmt.Sprintf("%s (%s): position closed", pos.Ticker, pos.DisplayName)
	}
	return fmt.Sprintf("%s (%s): %d shares, avg cost %s", pos.Ticker, pos.DisplayName, pos.Quantity, pos.AverageCost.StringFixed(2))
}

func HistoryResponse(pos model.Position) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📋 %s (%s) history:\n", pos.Ticker, pos.DisplayName))
	for i, tx := range pos.Transactions {
		sb.WriteString(fmt.Sprintf("%d. %s %s %d @ %s\n", i+1, tx.Timestamp.Format("2006-01-02"), tx.Kind, tx.Quantity, tx.Price.StringFixed(2)))
	}
	sb.WriteString(PositionResponse(pos))

	return sb.String()
}

func optional(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.StringFixed(places)
}

func percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.StringFixed(2) + "%"
}
