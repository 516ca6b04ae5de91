package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/portfolio_sentiment_bot/config"
	"github.com/KotFed0t/portfolio_sentiment_bot/data"
	"github.com/KotFed0t/portfolio_sentiment_bot/data/cache"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/externalApi/alphaVantageApi"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/externalApi/eodhdApi"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/ledger"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/scheduler"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/tgbot"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config loaded", slog.String("logLevel", cfg.LogLevel), slog.Int("refreshWorkers", cfg.Refresh.Workers))

	redisClient, err := data.NewRedisClient(cfg)
	if err != nil {
		slog.Error("can't connect to redis", slog.String("err", err.Error()))
		panic(err)
	}

	var marketCache portfolioService.Cache = cache.NopCache{}
	if redisClient != nil {
		defer redisClient.Close()
		marketCache = cache.NewRedisCache(redisClient, cfg)
	} else {
		slog.Info("redis host is not set, market data cache disabled")
	}

	quoteApi := eodhdApi.New(cfg)
	sentimentApi := alphaVantageApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	portfolioSrv := portfolioService.New(ledger.New(), quoteApi, sentimentApi, marketCache, reportGenerator, cfg.Refresh.Workers)

	sched, err := scheduler.New()
	if err != nil {
		slog.Error("can't create scheduler", slog.String("err", err.Error()))
		panic(err)
	}
	if redisClient != nil {
		if err = sched.NewIntervalJob("warm quote cache", portfolioSrv.WarmCache, cfg.Jobs.WarmCacheInterval, false); err != nil {
			panic(err)
		}
	}
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(portfolioSrv)

	tgBot := tgbot.New(cfg, tgController)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
