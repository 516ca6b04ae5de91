package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_OWNER_CHAT_ID", "42")
	t.Setenv("EODHD_API_KEY", "demo")
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(42), cfg.Telegram.OwnerChatID)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "US", cfg.API.EodhdApi.Exchange)
	assert.Empty(t, cfg.API.AlphaVantage.Key)
	assert.Equal(t, 5, cfg.API.AlphaVantage.RequestsPerMinute)
	assert.Empty(t, cfg.Redis.Host)
	assert.Equal(t, 4, cfg.Refresh.Workers)
}

func TestParseOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ALPHA_VANTAGE_API_KEY", "secret")
	t.Setenv("CACHE_QUOTE_EXPIRATION", "1m")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.AlphaVantage.Key)
	assert.Equal(t, time.Minute, cfg.Cache.QuoteExpiration)
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestParseMissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")

	_, err := Parse()
	assert.Error(t, err)
}
