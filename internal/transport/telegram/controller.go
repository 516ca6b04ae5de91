package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/service"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_sentiment_bot/utils"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "something went wrong..."
	emptyMsg       = "Add stocks with /buy to begin."
	askKeyMsg      = "Sentiment is disabled. Send /apikey <Alpha Vantage key> to enable it."
	helpMsg        = `Commands:
/buy TICKER PRICE QUANTITY - record a purchase
/sell TICKER PRICE QUANTITY - record a sale
/portfolio - holdings, P&L and recommendations
/history TICKER - transactions of a ticker
/report - xlsx report with charts
/apikey KEY - set the news sentiment api key`
)

type PortfolioService interface {
	AddTransaction(ctx context.Context, in portfolioService.TransactionInput) (model.Position, error)
	Refresh(ctx context.Context) (model.Report, error)
	History(ctx context.Context, ticker string) (model.Position, error)
	GenerateReport(ctx context.Context) (fileBytes []byte, fileExtension string, err error)
	SetSentimentAPIKey(ctx context.Context, key string) error
	SentimentEnabled() bool
}

type Controller struct {
	portfolioService PortfolioService
}

func NewController(portfolioService PortfolioService) *Controller {
	return &Controller{portfolioService: portfolioService}
}

func (ctrl *Controller) Start(c tele.Context) error {
	msg := "Hello! I track your portfolio.\n\n" + helpMsg
	if !ctrl.portfolioService.SentimentEnabled() {
		msg += "\n\n" + askKeyMsg
	}
	return c.Send(msg)
}

func (ctrl *Controller) Buy(c tele.Context) error {
	return ctrl.addTransaction(c, model.Buy)
}

func (ctrl *Controller) Sell(c tele.Context) error {
	return ctrl.addTransaction(c, model.Sell)
}

func (ctrl *Controller) addTransaction(c tele.Context, kind model.TransactionKind) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	in, err := ParseTransactionArgs(kind, c.Args())
	if err != nil {
		return c.Send(fmt.Sprintf("%s\nusage: /%s TICKER PRICE QUANTITY", err.Error(), kind))
	}

	pos, err := ctrl.portfolioService.AddTransaction(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.Send(err.Error())
		}
		slog.Error("got error from portfolioService.AddTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("✅ " + telebotConverter.PositionResponse(pos))
}

func (ctrl *Controller) Portfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	report, err := ctrl.portfolioService.Refresh(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoPositions) {
			return c.Send(emptyMsg)
		}
		slog.Error("got error from portfolioService.Refresh", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.ReportResponse(report))
}

func (ctrl *Controller) History(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	args := c.Args()
	if len(args) != 1 {
		return c.Send("usage: /history TICKER")
	}

	pos, err := ctrl.portfolioService.History(ctx, args[0])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("no transactions for " + args[0])
		}
		slog.Error("got error from portfolioService.History", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.HistoryResponse(pos))
}

func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	_ = c.Notify(tele.UploadingDocument)

	fileBytes, ext, err := ctrl.portfolioService.GenerateReport(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoPositions) {
			return c.Send(emptyMsg)
		}
		slog.Error("got error from portfolioService.GenerateReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(fileBytes)),
		FileName: "portfolio" + ext,
	}
	return c.Send(doc)
}

func (ctrl *Controller) APIKey(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	// the key should not stay in the chat
	if err := c.Delete(); err != nil {
		slog.Warn("can't delete api key message", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Send("usage: /apikey KEY")
	}

	if err := ctrl.portfolioService.SetSentimentAPIKey(ctx, args[0]); err != nil {
		return c.Send(err.Error())
	}

	return c.Send("🔑 Sentiment enabled.")
}

// ParseTransactionArgs parses "TICKER PRICE QUANTITY".
func ParseTransactionArgs(kind model.TransactionKind, args []string) (portfolioService.TransactionInput, error) {
	if len(args) != 3 {
		return portfolioService.TransactionInput{}, fmt.Errorf("expected 3 arguments, got %d", len(args))
	}

	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return portfolioService.TransactionInput{}, fmt.Errorf("invalid price %q", args[1])
	}

	quantity, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return portfolioService.TransactionInput{}, fmt.Errorf("invalid quantity %q", args[2])
	}

	return portfolioService.TransactionInput{
		Ticker:   args[0],
		Kind:     kind,
		Price:    price,
		Quantity: quantity,
	}, nil
}
