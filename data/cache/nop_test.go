package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NopCache{}

	require.NoError(t, c.SetQuotes(ctx, map[string]model.Quote{"AAPL": model.EmptyQuote()}))
	_, err := c.GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetSentiment(ctx, "AAPL", decimal.NewFromFloat(0.2)))
	_, err = c.GetSentiment(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// Cached quotes must keep the difference between a missing and a zero value.
func TestQuoteJSONKeepsMissingFields(t *testing.T) {
	quote := model.Quote{
		Name:   "Tiny",
		Price:  decimal.NewNullDecimal(decimal.Zero),
		Sector: model.UnknownSector,
	}

	raw, err := json.Marshal(quote)
	require.NoError(t, err)

	var decoded model.Quote
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.True(t, decoded.Price.Valid)
	assert.True(t, decoded.Price.Decimal.IsZero())
	assert.False(t, decoded.MarketCap.Valid)
	assert.False(t, decoded.PERatio.Valid)
	assert.Equal(t, "Tiny", decoded.Name)
}
