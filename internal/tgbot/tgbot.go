package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/portfolio_sentiment_bot/config"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_sentiment_bot/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot         *tele.Bot
	ctrl        *telegram.Controller
	ownerChatID int64
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, ownerChatID: cfg.Telegram.OwnerChatID}
}

func (b *TGBot) Start() {
	b.useMiddleware()
	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!", slog.Int64("ownerChatID", b.ownerChatID))
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

// useMiddleware must run before routes are registered.
func (b *TGBot) useMiddleware() {
	// single user: updates from anyone else are dropped
	b.bot.Use(middleware.Recover(), customMW.Logger(), middleware.Whitelist(b.ownerChatID))
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Start)
	b.bot.Handle("/buy", b.ctrl.Buy)
	b.bot.Handle("/sell", b.ctrl.Sell)
	b.bot.Handle("/portfolio", b.ctrl.Portfolio)
	b.bot.Handle("/history", b.ctrl.History)
	b.bot.Handle("/report", b.ctrl.Report)
	b.bot.Handle("/apikey", b.ctrl.APIKey)
}
