package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/valuation"
	"github.com/KotFed0t/portfolio_sentiment_bot/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	portfolioSheet  = "Portfolio"
	allocationSheet = "Allocation"
	historySheet    = "History"

	notAvailable = "N/A"
	dateLayout   = "2006-01-02"
)

var portfolioHeader = []any{
	"Ticker", "Company", "Quantity", "Avg Cost", "Current Price", "Value", "Unrealized PnL",
	"Return %", "Sector", "Market Cap", "P/E", "Sentiment", "Action",
}

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.Report, positions []model.Position) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", portfolioSheet); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, "", err
	}

	if err = g.fillPortfolio(f, report, headerStyle); err != nil {
		slog.Error("got error while filling portfolio sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillAllocation(f, report.Rows, headerStyle); err != nil {
		slog.Error("got error while filling allocation sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillHistory(f, positions, headerStyle); err != nil {
		slog.Error("got error while filling history sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillPortfolio(f *excelize.File, report model.Report, headerStyle int) error {
	if err := f.SetSheetRow(portfolioSheet, "A1", &portfolioHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(portfolioSheet, "A1", "M1", headerStyle); err != nil {
		return err
	}

	for i, row := range report.Rows {
		values := []any{
			row.Ticker,
			row.CompanyName,
			row.Quantity,
			money(row.AverageCost),
			optional(row.CurrentPrice),
			optional(row.Value),
			optional(row.UnrealizedPnl),
			optional(row.ReturnPct),
			row.Sector,
			string(row.MarketCapClass),
			optional(row.PERatio),
			optionalScore(row.SentimentScore),
			row.RecommendedAction,
		}
		if err := f.SetSheetRow(portfolioSheet, cell(1, i+2), &values); err != nil {
			return err
		}
	}

	summaryRow := len(report.Rows) + 4
	summary := [][]any{
		{"Total Portfolio Market Value", money(report.Summary.TotalValue)},
		{"Realized Profit", money(report.Summary.RealizedProfit)},
		{"Combined Portfolio Value", money(report.Summary.CombinedValue)},
		{"Positions without price", report.Summary.UnavailableRows},
		{"Generated at", report.GeneratedAt.Format("2006-01-02 15:04")},
	}
	for i, values := range summary {
		if err := f.SetSheetRow(portfolioSheet, cell(1, summaryRow+i), &values); err != nil {
			return err
		}
	}

	return f.SetCellStyle(portfolioSheet, cell(1, summaryRow), cell(1, summaryRow+len(summary)-1), headerStyle)
}

// fillAllocation writes the sector, market-cap and P/E tables side by side and
// charts each of them.
func (g *XSLSXGenerator) fillAllocation(f *excelize.File, rows []model.ValuationRow, headerStyle int) error {
	if _, err := f.NewSheet(allocationSheet); err != nil {
		return err
	}

	sectors := valuation.SectorAllocation(rows)
	if err := g.writeBuckets(f, 1, "Sector", sectors, headerStyle); err != nil {
		return err
	}

	caps := valuation.MarketCapDistribution(rows)
	if err := g.writeBuckets(f, 4, "Market Cap", caps, headerStyle); err != nil {
		return err
	}

	header := []any{"Ticker", "P/E", "Unrealized PnL"}
	if err := f.SetSheetRow(allocationSheet, "G1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(allocationSheet, "G1", "I1", headerStyle); err != nil {
		return err
	}

	points := 0
	for _, row := range rows {
		if !row.PERatio.Valid || !row.UnrealizedPnl.Valid {
			continue
		}
		values := []any{row.Ticker, money(row.PERatio.Decimal), money(row.UnrealizedPnl.Decimal)}
		if err := f.SetSheetRow(allocationSheet, cell(7, points+2), &values); err != nil {
			return err
		}
		points++
	}

	if len(sectors) > 0 {
		err := f.AddChart(allocationSheet, "K1", &excelize.Chart{
			Type:   excelize.Pie,
			Series: []excelize.ChartSeries{series(allocationSheet, "A", "B", len(sectors))},
			Title:  []excelize.RichTextRun{{Text: "Sector Allocation"}},
		})
		if err != nil {
			return fmt.Errorf("add sector chart: %w", err)
		}
	}

	if len(caps) > 0 {
		err := f.AddChart(allocationSheet, "K17", &excelize.Chart{
			Type:   excelize.Col,
			Series: []excelize.ChartSeries{series(allocationSheet, "D", "E", len(caps))},
			Title:  []excelize.RichTextRun{{Text: "Market Cap Distribution"}},
		})
		if err != nil {
			return fmt.Errorf("add market cap chart: %w", err)
		}
	}

	if points > 0 {
		err := f.AddChart(allocationSheet, "K33", &excelize.Chart{
			Type:   excelize.Scatter,
			Series: []excelize.ChartSeries{series(allocationSheet, "H", "I", points)},
			Title:  []excelize.RichTextRun{{Text: "P/E vs. Unrealized PnL"}},
		})
		if err != nil {
			return fmt.Errorf("add pe chart: %w", err)
		}
	}

	return nil
}

func (g *XSLSXGenerator) writeBuckets(f *excelize.File, col int, title string, buckets []model.Bucket, headerStyle int) error {
	header := []any{title, "Value"}
	if err := f.SetSheetRow(allocationSheet, cell(col, 1), &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(allocationSheet, cell(col, 1), cell(col+1, 1), headerStyle); err != nil {
		return err
	}

	for i, bucket := range buckets {
		values := []any{bucket.Label, money(bucket.Value)}
		if err := f.SetSheetRow(allocationSheet, cell(col, i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillHistory(f *excelize.File, positions []model.Position, headerStyle int) error {
	if _, err := f.NewSheet(historySheet); err != nil {
		return err
	}

	header := []any{"Date", "Ticker", "Type", "Price", "Quantity"}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(historySheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, pos := range positions {
		for _, tx := range pos.Transactions {
			values := []any{tx.Timestamp.Format(dateLayout), pos.Ticker, string(tx.Kind), money(tx.Price), tx.Quantity}
			if err := f.SetSheetRow(historySheet, cell(1, rowNum), &values); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func series(sheet, categoriesCol, valuesCol string, count int) excelize.ChartSeries {
	return excelize.ChartSeries{
		Name:       fmt.Sprintf("%s!$%s$1", sheet, valuesCol),
		Categories: fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, categoriesCol, categoriesCol, count+1),
		Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, valuesCol, valuesCol, count+1),
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func optional(d decimal.NullDecimal) any {
	if !d.Valid {
		return notAvailable
	}
	return money(d.Decimal)
}

func optionalScore(d decimal.NullDecimal) any {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.Round(4).InexactFloat64()
}
