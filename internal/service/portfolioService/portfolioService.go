package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_sentiment_bot/internal/ledger"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/model"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/recommendation"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/service"
	"github.com/KotFed0t/portfolio_sentiment_bot/internal/valuation"
	"github.com/KotFed0t/portfolio_sentiment_bot/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
}

type SentimentApi interface {
	GetSentiment(ctx context.Context, ticker string) (decimal.Decimal, error)
	SetAPIKey(key string)
	HasAPIKey() bool
}

type Cache interface {
	SetQuotes(ctx context.Context, quotes map[string]model.Quote) error
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
	SetSentiment(ctx context.Context, ticker string, score decimal.Decimal) error
	GetSentiment(ctx context.Context, ticker string) (decimal.Decimal, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.Report, positions []model.Position) (fileBytes []byte, fileExtension string, err error)
}

type TransactionInput struct {
	Ticker   string
	Kind     model.TransactionKind
	Price    decimal.Decimal
	Quantity int64
}

type PortfolioService struct {
	mu    sync.Mutex
	state *ledger.PortfolioState

	quoteApi        QuoteApi
	sentimentApi    SentimentApi
	cache           Cache
	reportGenerator ReportGenerator
	workers         int
	now             func() time.Time
}

func New(state *ledger.PortfolioState, quoteApi QuoteApi, sentimentApi SentimentApi, cache Cache, reportGenerator ReportGenerator, workers int) *PortfolioService {
	if workers < 1 {
		workers = 1
	}
	return &PortfolioService{
		state:           state,
		quoteApi:        quoteApi,
		sentimentApi:    sentimentApi,
		cache:           cache,
		reportGenerator: reportGenerator,
		workers:         workers,
		now:             time.Now,
	}
}

func ValidateTransaction(in TransactionInput) (TransactionInput, error) {
	in.Ticker = ledger.NormalizeTicker(in.Ticker)

	switch {
	case in.Ticker == "":
		return in, fmt.Errorf("%w: empty ticker", service.ErrInvalidInput)
	case !in.Kind.Valid():
		return in, fmt.Errorf("%w: unknown transaction kind %q", service.ErrInvalidInput, in.Kind)
	case in.Price.IsNegative():
		return in, fmt.Errorf("%w: negative price %s", service.ErrInvalidInput, in.Price)
	case in.Quantity < 1:
		return in, fmt.Errorf("%w: quantity must be at least 1, got %d", service.ErrInvalidInput, in.Quantity)
	}

	return in, nil
}

func (s *PortfolioService) AddTransaction(ctx context.Context, in TransactionInput) (model.Position, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddTransaction"

	slog.Debug("AddTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("input", in))
	defer func() {
		slog.Debug("AddTransaction finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	in, err := ValidateTransaction(in)
	if err != nil {
		slog.Warn("transaction rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Position{}, err
	}

	s.mu.Lock()
	_, known := s.state.Position(in.Ticker)
	s.mu.Unlock()

	// company name is looked up once, outside the lock
	var name string
	if !known {
		quote, err := s.getQuote(ctx, in.Ticker)
		if err != nil {
			slog.Warn("can't get company name, ticker is used instead", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			name = quote.Name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Kind == model.Buy && in.Quantity > s.state.MaxBuyQuantity(in.Ticker) {
		err = fmt.Errorf("%w: quantity %d would overflow the %s position", service.ErrInvalidInput, in.Quantity, in.Ticker)
		slog.Warn("transaction rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Position{}, err
	}

	s.state.ApplyTransaction(in.Ticker, in.Kind, in.Price, in.Quantity)
	s.state.SetDisplayName(in.Ticker, name)
	pos, _ := s.state.Position(in.Ticker)

	slog.Info(
		"transaction applied",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("ticker", pos.Ticker),
		slog.String("kind", string(in.Kind)),
		slog.Int64("quantity", pos.Quantity),
		slog.String("averageCost", pos.AverageCost.String()),
		slog.String("realizedProfit", s.state.RealizedProfit().String()),
	)

	return pos, nil
}

// Refresh values every held position against fresh market data. Fetch
// failures never abort the refresh, they only leave fields unavailable.
func (s *PortfolioService) Refresh(ctx context.Context) (model.Report, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Refresh"

	slog.Debug("Refresh start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Refresh finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	positions, realized, err := s.snapshot()
	if err != nil {
		return model.Report{}, err
	}

	held := make([]string, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity > 0 {
			held = append(held, pos.Ticker)
		}
	}

	quotes := make(map[string]model.Quote, len(held))
	sentiments := make(map[string]decimal.NullDecimal, len(held))
	var resMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, ticker := range held {
		ticker := ticker
		g.Go(func() error {
			quote, err := s.getQuote(gCtx, ticker)
			if err != nil {
				slog.Warn("quote unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
				quote = model.EmptyQuote()
			}

			sentiment := s.getSentiment(gCtx, ticker)

			resMu.Lock()
			quotes[ticker] = quote
			sentiments[ticker] = sentiment
			resMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	rows := valuation.ValuateAll(positions, quotes)
	for i := range rows {
		rows[i].SentimentScore = sentiments[rows[i].Ticker]
		rows[i].RecommendedAction = recommendation.Recommend(rows[i].SentimentScore, rows[i].ReturnPct)
	}

	report := model.Report{
		Rows:        rows,
		Summary:     valuation.Summarize(rows, realized),
		GeneratedAt: s.now(),
	}

	slog.Info(
		"portfolio refreshed",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("rows", len(rows)),
		slog.String("totalValue", report.Summary.TotalValue.String()),
		slog.Int("unavailableRows", report.Summary.UnavailableRows),
	)

	return report, nil
}

func (s *PortfolioService) History(ctx context.Context, ticker string) (model.Position, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.History"

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.state.Position(ticker)
	if !ok {
		slog.Debug("ticker not in portfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
		return model.Position{}, service.ErrNotFound
	}
	return pos, nil
}

func (s *PortfolioService) GenerateReport(ctx context.Context) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("GenerateReport failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GenerateReport completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	report, err := s.Refresh(ctx)
	if err != nil {
		return nil, "", err
	}

	positions, _, err := s.snapshot()
	if err != nil {
		return nil, "", err
	}

	return s.reportGenerator.Generate(ctx, report, positions)
}

func (s *PortfolioService) SetSentimentAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty api key", service.ErrInvalidInput)
	}
	s.sentimentApi.SetAPIKey(key)
	slog.Info("sentiment api key updated", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
	return nil
}

func (s *PortfolioService) SentimentEnabled() bool {
	return s.sentimentApi.HasAPIKey()
}

// WarmCache refetches quotes of held tickers into the cache.
func (s *PortfolioService) WarmCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.WarmCache"

	positions, _, err := s.snapshot()
	if err != nil {
		if errors.Is(err, service.ErrNoPositions) {
			return nil
		}
		return err
	}

	quotes := make(map[string]model.Quote, len(positions))
	var errs []error
	for _, pos := range positions {
		if pos.Quantity == 0 {
			continue
		}
		quote, err := s.quoteApi.GetQuote(ctx, pos.Ticker)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pos.Ticker, err))
			continue
		}
		quotes[pos.Ticker] = quote
	}

	if len(quotes) > 0 {
		if err := s.cache.SetQuotes(ctx, quotes); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Debug("WarmCache done", slog.String("rqID", rqID), slog.String("op", op), slog.Int("cached", len(quotes)))

	return errors.Join(errs...)
}

func (s *PortfolioService) snapshot() ([]model.Position, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsEmpty() {
		return nil, decimal.Zero, service.ErrNoPositions
	}
	return s.state.Positions(), s.state.RealizedProfit(), nil
}

func (s *PortfolioService) getQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getQuote"

	quote, err := s.cache.GetQuote(ctx, ticker)
	if err == nil {
		return quote, nil
	}

	slog.Debug("can't get quote from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	quote, err = s.quoteApi.GetQuote(ctx, ticker)
	if err != nil {
		return model.Quote{}, err
	}

	go s.cache.SetQuotes(context.WithoutCancel(ctx), map[string]model.Quote{ticker: quote})

	return quote, nil
}

// getSentiment maps every provider failure to a missing score.
func (s *PortfolioService) getSentiment(ctx context.Context, ticker string) decimal.NullDecimal {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getSentiment"

	if !s.sentimentApi.HasAPIKey() {
		return decimal.NullDecimal{}
	}

	score, err := s.cache.GetSentiment(ctx, ticker)
	if err == nil {
		return decimal.NewNullDecimal(score)
	}

	score, err = s.sentimentApi.GetSentiment(ctx, ticker)
	if err != nil {
		slog.Warn("sentiment unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		return decimal.NullDecimal{}
	}

	go s.cache.SetSentiment(context.WithoutCancel(ctx), ticker, score)

	return decimal.NewNullDecimal(score)
}
