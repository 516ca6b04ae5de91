package alphaVantageApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_sentiment_bot/config"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_sentiment_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

var ErrNoAPIKey = errors.New("error alpha vantage api key is not set")

var (
	minScore = decimal.NewFromInt(-1)
	maxScore = decimal.NewFromInt(1)
)

type newsSentimentRs struct {
	Feed []struct {
		Title                 string             `json:"title"`
		OverallSentimentScore externalApi.Number `json:"overall_sentiment_score"`
	} `json:"feed"`
	// the API answers 200 with one of these when the key is throttled or invalid
	Information  string `json:"Information"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

type AlphaVantageApi struct {
	client  *resty.Client
	limiter *rate.Limiter

	mu     sync.RWMutex
	apiKey string
}

func New(cfg *config.Config) *AlphaVantageApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.AlphaVantage.Url)

	rpm := cfg.API.AlphaVantage.RequestsPerMinute
	if rpm <= 0 {
		rpm = 1
	}

	return &AlphaVantageApi{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		apiKey:  cfg.API.AlphaVantage.Key,
	}
}

func (a *AlphaVantageApi) SetAPIKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apiKey = key
}

func (a *AlphaVantageApi) HasAPIKey() bool {
	return a.key() != ""
}

func (a *AlphaVantageApi) key() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiKey
}

// GetSentiment returns the overall sentiment score of the latest article about
// the ticker. The request waits for the shared request budget first.
func (a *AlphaVantageApi) GetSentiment(ctx context.Context, ticker string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetSentiment"

	apiKey := a.key()
	if apiKey == "" {
		return decimal.Zero, ErrNoAPIKey
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("wait for rate limiter: %w", err)
	}

	slog.Debug("start AlphaVantageApi.GetSentiment request", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"function": "NEWS_SENTIMENT",
			"tickers":  ticker,
			"apikey":   apiKey,
		}).
		Get("/query")
	if err != nil {
		slog.Error("error while dialing AlphaVantageApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return decimal.Zero, err
	}

	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("%w: status %d", externalApi.ErrUnexpectedRs, resp.StatusCode())
	}

	rs := newsSentimentRs{}
	err = json.Unmarshal(resp.Body(), &rs)
	if err != nil {
		slog.Error("can't unmarshall response into newsSentimentRs", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return decimal.Zero, fmt.Errorf("%w: %w", externalApi.ErrUnexpectedRs, err)
	}

	switch {
	case rs.Note != "":
		return decimal.Zero, fmt.Errorf("%w: %s", externalApi.ErrRateLimited, rs.Note)
	case rs.Information != "":
		// also sent for invalid and premium-only keys
		if strings.Contains(strings.ToLower(rs.Information), "rate limit") {
			return decimal.Zero, fmt.Errorf("%w: %s", externalApi.ErrRateLimited, rs.Information)
		}
		return decimal.Zero, fmt.Errorf("%w: %s", externalApi.ErrUnexpectedRs, rs.Information)
	case rs.ErrorMessage != "":
		return decimal.Zero, fmt.Errorf("%w: %s", externalApi.ErrUnexpectedRs, rs.ErrorMessage)
	case len(rs.Feed) == 0:
		return decimal.Zero, externalApi.ErrNotFound
	}

	score := rs.Feed[0].OverallSentimentScore
	if !score.Valid {
		return decimal.Zero, fmt.Errorf("%w: empty overall_sentiment_score", externalApi.ErrUnexpectedRs)
	}
	if score.Decimal.LessThan(minScore) || score.Decimal.GreaterThan(maxScore) {
		return decimal.Zero, fmt.Errorf("%w: score %s out of range", externalApi.ErrUnexpectedRs, score.Decimal)
	}

	slog.Debug("AlphaVantageApi.GetSentiment request complete", slog.String("rqID", rqID), slog.String("op", op), slog.String("score", score.Decimal.String()))

	return score.Decimal, nil
}
