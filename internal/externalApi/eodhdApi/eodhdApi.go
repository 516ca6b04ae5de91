package eodhdApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KotFed0t/portfolio_sentiment_bot/config"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/KotFed0t/portfolio_sentiment_bot/utils"
	"github.com/go-resty/resty/v2"
)

type realTimeRs struct {
	Code  string             `json:"code"`
	Close externalApi.Number `json:"close"`
}

type fundamentalsRs struct {
	General struct {
		Name   string `json:"Name"`
		Sector string `json:"Sector"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization externalApi.Number `json:"MarketCapitalization"`
		PERatio              externalApi.Number `json:"PERatio"`
	} `json:"Highlights"`
}

type EodhdApi struct {
	client   *resty.Client
	exchange string
}

func New(cfg *config.Config) *EodhdApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.EodhdApi.Url).
		SetQueryParams(map[string]string{
			"api_token": cfg.API.EodhdApi.Key,
			"fmt":       "json",
		})
	return &EodhdApi{client: client, exchange: cfg.API.EodhdApi.Exchange}
}

// GetQuote combines the real-time price with company fundamentals. A failure
// of one endpoint leaves its fields missing; only when both fail is an error returned.
func (a *EodhdApi) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "EodhdApi.GetQuote"

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	quote := model.EmptyQuote()

	price, priceErr := a.getPrice(ctx, ticker)
	if priceErr != nil {
		slog.Warn("can't get price", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", priceErr.Error()))
	} else {
		quote.Price = price.Close.NullDecimal
	}

	fundamentals, fundErr := a.getFundamentals(ctx, ticker)
	if fundErr != nil {
		slog.Warn("can't get fundamentals", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", fundErr.Error()))
	} else {
		quote.Name = strings.TrimSpace(fundamentals.General.Name)
		if sector := strings.TrimSpace(fundamentals.General.Sector); sector != "" {
			quote.Sector = sector
		}
		quote.MarketCap = fundamentals.Highlights.MarketCapitalization.NonZero()
		quote.PERatio = fundamentals.Highlights.PERatio.NonZero()
	}

	if priceErr != nil && fundErr != nil {
		if errors.Is(priceErr, externalApi.ErrNotFound) && errors.Is(fundErr, externalApi.ErrNotFound) {
			return model.Quote{}, externalApi.ErrNotFound
		}
		return model.Quote{}, errors.Join(priceErr, fundErr)
	}

	slog.Debug("GetQuote complete", slog.String("rqID", rqID), slog.String("op", op), slog.Any("quote", quote))

	return quote, nil
}

func (a *EodhdApi) getPrice(ctx context.Context, ticker string) (realTimeRs, error) {
	var rs realTimeRs
	err := a.get(ctx, "/real-time/"+a.symbol(ticker), nil, &rs)
	return rs, err
}

func (a *EodhdApi) getFundamentals(ctx context.Context, ticker string) (fundamentalsRs, error) {
	var rs fundamentalsRs
	params := map[string]string{
		"filter": "General,Highlights",
	}
	err := a.get(ctx, "/fundamentals/"+a.symbol(ticker), params, &rs)
	return rs, err
}

func (a *EodhdApi) get(ctx context.Context, url string, params map[string]string, result any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)
	if err != nil {
		slog.Error("error while dialing EodhdApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("url", url))
		return err
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return externalApi.ErrNotFound
	case resp.StatusCode() == http.StatusTooManyRequests:
		return externalApi.ErrRateLimited
	case resp.IsError():
		return fmt.Errorf("%w: status %d", externalApi.ErrUnexpectedRs, resp.StatusCode())
	}

	err = json.Unmarshal(resp.Body(), result)
	if err != nil {
		slog.Error("can't unmarshall EodhdApi response", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("url", url))
		return fmt.Errorf("%w: %w", externalApi.ErrUnexpectedRs, err)
	}

	return nil
}

func (a *EodhdApi) symbol(ticker string) string {
	if strings.Contains(ticker, ".") || a.exchange == "" {
		return ticker
	}
	return ticker + "." + a.exchange
}
