package cache

import (
	"context"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
)

// NopCache is used when Redis is not configured; every read is a miss.
type NopCache struct{}

func (NopCache) SetQuotes(context.Context, map[string]model.Quote) error { return nil }

func (NopCache) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, ErrCacheMiss
}

func (NopCache) SetSentiment(context.Context, string, decimal.Decimal) error { return nil }

func (NopCache) GetSentiment(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, ErrCacheMiss
}
