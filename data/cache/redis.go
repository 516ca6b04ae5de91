package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_sentiment_bot/config"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/KotFed0t/portfolio_sentiment_bot/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrCacheMiss = errors.New("error cache miss")

const (
	quotePrefix     = "quote:"
	sentimentPrefix = "sentiment:"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes map[string]model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetQuotes", slog.String("rqID", rqID), slog.Int("count", len(quotes)))

	pipe := r.redis.Pipeline()
	for ticker, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote in SetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("ticker", ticker),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, quotePrefix+ticker, quoteJson, r.cfg.Cache.QuoteExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("ticker", ticker))

	res, err := r.redis.Get(ctx, quotePrefix+ticker).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Quote{}, ErrCacheMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", quotePrefix+ticker))
		return model.Quote{}, err
	}

	quote := model.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}

func (r *RedisCache) SetSentiment(ctx context.Context, ticker string, score decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := r.redis.Set(ctx, sentimentPrefix+ticker, score.String(), r.cfg.Cache.SentimentExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", sentimentPrefix+ticker))
		return err
	}

	return nil
}

func (r *RedisCache) GetSentiment(ctx context.Context, ticker string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, sentimentPrefix+ticker).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, ErrCacheMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", sentimentPrefix+ticker))
		return decimal.Zero, err
	}

	score, err := decimal.NewFromString(res)
	if err != nil {
		slog.Error("can't parse cached sentiment", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("resultFromRedis", res))
		return decimal.Zero, err
	}

	return score, nil
}
