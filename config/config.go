package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Telegram Telegram
	Redis    Redis
	API      API
	Cache    Cache
	Jobs     Jobs
	Refresh  Refresh
}

type Telegram struct {
	Token       string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout  time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	OwnerChatID int64         `env:"TELEGRAM_OWNER_CHAT_ID"`
}

// Redis is optional: an empty host disables the market-data cache.
type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:""`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	EodhdApi     EodhdApi
	AlphaVantage AlphaVantage
}

type EodhdApi struct {
	Url      string `env:"EODHD_API_URL" envDefault:"https://eodhd.com/api"`
	Key      string `env:"EODHD_API_KEY"`
	Exchange string `env:"EODHD_EXCHANGE" envDefault:"US"`
}

// AlphaVantage.Key may be empty, the bot then asks the owner for it.
type AlphaVantage struct {
	Url               string `env:"ALPHA_VANTAGE_API_URL" envDefault:"https://www.alphavantage.co"`
	Key               string `env:"ALPHA_VANTAGE_API_KEY" envDefault:""`
	RequestsPerMinute int    `env:"ALPHA_VANTAGE_REQUESTS_PER_MINUTE" envDefault:"5"`
}

type Cache struct {
	QuoteExpiration     time.Duration `env:"CACHE_QUOTE_EXPIRATION" envDefault:"5m"`
	SentimentExpiration time.Duration `env:"CACHE_SENTIMENT_EXPIRATION" envDefault:"30m"`
}

type Jobs struct {
	WarmCacheInterval time.Duration `env:"WARM_CACHE_JOB_INTERVAL" envDefault:"15m"`
}

type Refresh struct {
	Workers int `env:"REFRESH_WORKERS" envDefault:"4"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Parse() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}
