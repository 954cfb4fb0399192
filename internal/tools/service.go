package tools

import (
	"context"

	"stockadvisor/internal/adapters/marketdata"
	"stockadvisor/internal/adapters/websearch"
	"stockadvisor/internal/tools/indicators"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
	"stockadvisor/pkg/templates"
)

const (
	defaultPeriod     = "1mo"
	technicalPeriod   = "6mo"
	newsLimit         = 5
	defaultMaxResults = 5
)

// Service implements the catalog tools on top of market data and web search.
//
// Handlers return model-facing text. Fetch failures come back as errors
// whose message is already phrased for the model.
type Service struct {
	market    marketdata.Provider
	search    websearch.Searcher
	templates *templates.Registry
	log       *logger.Logger
}

// NewService wires the tool handlers. tmpl may be nil to use the embedded templates.
func NewService(market marketdata.Provider, search websearch.Searcher, tmpl *templates.Registry, log *logger.Logger) *Service {
	if tmpl == nil {
		tmpl = templates.Get()
	}
	return &Service{
		market:    market,
		search:    search,
		templates: tmpl,
		log:       log.With("component", "tools"),
	}
}

// StockHistory renders daily bars for the requested period.
func (s *Service) StockHistory(ctx context.Context, args map[string]any) (string, error) {
	sym, err := symbolArg(args)
	if err != nil {
		return "", errors.Wrap(err, "Error fetching history")
	}
	period := stringArg(args, "period", defaultPeriod)

	h, err := s.market.History(ctx, sym, period)
	if errors.Is(err, errors.ErrNotFound) || (err == nil && len(h.Bars) == 0) {
		return "No history found for " + sym + ".", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "Error fetching history for %s", sym)
	}

	return s.render("tools/stock_history", map[string]any{
		"Symbol": sym,
		"Period": period,
		"Bars":   h.Bars,
	})
}

// TechnicalSummary computes indicators over six months of data.
func (s *Service) TechnicalSummary(ctx context.Context, args map[string]any) (string, error) {
	sym, err := symbolArg(args)
	if err != nil {
		return "", errors.Wrap(err, "Error performing technical analysis")
	}

	h, err := s.market.History(ctx, sym, technicalPeriod)
	if errors.Is(err, errors.ErrNotFound) || (err == nil && len(h.Bars) == 0) {
		return "No history found for " + sym + ".", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "Error fetching history for %s", sym)
	}

	summary, err := indicators.Compute(h)
	if err != nil {
		return "", errors.Wrapf(err, "Error performing technical analysis for %s", sym)
	}
	summary.Symbol = sym

	return s.render("tools/technical_summary", summary)
}

// StockNews lists the latest headlines.
func (s *Service) StockNews(ctx context.Context, args map[string]any) (string, error) {
	sym, err := symbolArg(args)
	if err != nil {
		return "", errors.Wrap(err, "Error fetching news")
	}

	items, err := s.market.News(ctx, sym, newsLimit)
	if err != nil {
		return "", errors.Wrapf(err, "Error fetching news for %s", sym)
	}
	if len(items) == 0 {
		return "No news found for " + sym + ".", nil
	}

	return s.render("tools/stock_news", map[string]any{
		"Symbol": sym,
		"Items":  items,
	})
}

// StockProfile describes the company.
func (s *Service) StockProfile(ctx context.Context, args map[string]any) (string, error) {
	sym, err := symbolArg(args)
	if err != nil {
		return "", errors.Wrap(err, "Error fetching profile")
	}

	p, err := s.market.Profile(ctx, sym)
	if err != nil {
		return "", errors.Wrapf(err, "Error fetching profile for %s", sym)
	}
	p.Symbol = sym

	return s.render("tools/stock_profile", p)
}

// DetailedInfo reports price ranges and valuation metrics.
func (s *Service) DetailedInfo(ctx context.Context, args map[string]any) (string, error) {
	sym, err := symbolArg(args)
	if err != nil {
		return "", errors.Wrap(err, "Error fetching detailed info")
	}

	stats, err := s.market.Stats(ctx, sym)
	if err != nil {
		return "", errors.Wrapf(err, "Error fetching detailed info for %s", sym)
	}
	stats.Symbol = sym

	return s.render("tools/detailed_info", stats)
}

// ETFInfo reports fund category, costs and size.
func (s *Service) ETFInfo(ctx context.Context, args map[string]any) (string, error) {
	sym, err := symbolArg(args)
	if err != nil {
		return "", errors.Wrap(err, "Error fetching ETF info")
	}

	fund, err := s.market.Fund(ctx, sym)
	if err != nil {
		return "", errors.Wrapf(err, "Error fetching ETF info for %s", sym)
	}
	fund.Symbol = sym
	if fund.Name == "" {
		fund.Name = sym
	}

	return s.render("tools/etf_info", fund)
}

// SearchWeb runs a DuckDuckGo query.
func (s *Service) SearchWeb(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return "", errors.Wrap(errors.NewValidationError("query", "is required", nil), "Search failed")
	}
	limit := intArg(args, "max_results", defaultMaxResults)
	if limit <= 0 {
		limit = defaultMaxResults
	}

	results, err := s.search.Search(ctx, query, limit)
	if err != nil {
		return "", errors.Wrap(err, "Search failed")
	}

	return websearch.Format(results), nil
}

func (s *Service) render(id string, data any) (string, error) {
	out, err := s.templates.Render(id, data)
	if err != nil {
		s.log.Errorw("render tool output", "template", id, "error", err)
		return "", errors.Wrapf(errors.ErrInternal, "render %s", id)
	}
	return out, nil
}
