package eodhdApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_sentiment_bot/config"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *EodhdApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 2 * time.Second
	cfg.API.EodhdApi = config.EodhdApi{Url: srv.URL, Key: "demo", Exchange: "US"}
	return New(cfg)
}

func TestGetQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo", r.URL.Query().Get("api_token"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/real-time/AAPL.US":
			_, _ = w.Write([]byte(`{"code":"AAPL.US","close":189.25}`))
		case "/fundamentals/AAPL.US":
			assert.Equal(t, "General,Highlights", r.URL.Query().Get("filter"))
			_, _ = w.Write([]byte(`{"General":{"Name":"Apple Inc","Sector":"Technology"},"Highlights":{"MarketCapitalization":2950000000000,"PERatio":"29.1"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	quote, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc", quote.Name)
	assert.Equal(t, "Technology", quote.Sector)
	assert.Equal(t, "189.25", quote.Price.Decimal.String())
	assert.Equal(t, "2950000000000", quote.MarketCap.Decimal.String())
	assert.Equal(t, "29.1", quote.PERatio.Decimal.String())
}

func TestGetQuoteToleratesMissingFields(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/real-time/TINY.US":
			_, _ = w.Write([]byte(`{"code":"TINY.US","close":"NA"}`))
		case "/fundamentals/TINY.US":
			_, _ = w.Write([]byte(`{"General":{"Name":"Tiny"},"Highlights":{"MarketCapitalization":0,"PERatio":null}}`))
		}
	})

	quote, err := api.GetQuote(context.Background(), "TINY")
	require.NoError(t, err)

	assert.False(t, quote.Price.Valid)
	assert.False(t, quote.MarketCap.Valid)
	assert.False(t, quote.PERatio.Valid)
	assert.Equal(t, model.UnknownSector, quote.Sector)
}

func TestGetQuotePartialFailure(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/real-time/IBM.US" {
			_, _ = w.Write([]byte(`{"code":"IBM.US","close":0}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	quote, err := api.GetQuote(context.Background(), "IBM")
	require.NoError(t, err)

	assert.True(t, quote.Price.Valid, "a reported zero price is kept")
	assert.True(t, quote.Price.Decimal.IsZero())
	assert.Empty(t, quote.Name)
	assert.Equal(t, model.UnknownSector, quote.Sector)
}

func TestGetQuoteNotFound(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuoteBothFail(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := api.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, externalApi.ErrRateLimited)
}

func TestSymbol(t *testing.T) {
	api := &EodhdApi{exchange: "US"}
	assert.Equal(t, "AAPL.US", api.symbol("AAPL"))
	assert.Equal(t, "VOD.LSE", api.symbol("VOD.LSE"))

	api.exchange = ""
	assert.Equal(t, "AAPL", api.symbol("AAPL"))
}
