package market

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"stockadvisor/internal/adapters/marketdata"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Indexes lists the benchmark symbols shown per country; unknown countries fall back to US.
var Indexes = map[string][]string{
	"US": {"^GSPC", "^DJI", "^IXIC", "^RUT"},
	"UK": {"^FTSE", "^GSPC"},
	"IN": {"^BSESN", "^NSEI"},
	"JP": {"^N225"},
}

// IndexQuote is the latest close of an index and its change from the previous close.
type IndexQuote struct {
	Symbol  string  `json:"symbol"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Change  float64 `json:"change"`
	Percent float64 `json:"percent"`
}

// ChartPoint is one daily close.
type ChartPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Service serves market overview data to the HTTP API
type Service struct {
	provider marketdata.Provider
	log      *logger.Logger
}

// NewService creates a new market service
func NewService(provider marketdata.Provider, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With("service", "market"),
	}
}

// Indexes returns quotes for the country's indexes. Symbols that fail to load
// or lack two closes are skipped.
func (s *Service) Indexes(ctx context.Context, country string) []IndexQuote {
	symbols, ok := Indexes[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		symbols = Indexes["US"]
	}

	quotes := make([]IndexQuote, 0, len(symbols))
	for _, symbol := range symbols {
		history, err := s.provider.History(ctx, symbol, "5d")
		if err != nil {
			s.log.Warnf("Error fetching %s: %v", symbol, err)
			continue
		}
		if len(history.Bars) < 2 {
			continue
		}

		current := decimal.NewFromFloat(history.Bars[len(history.Bars)-1].Close)
		prev := decimal.NewFromFloat(history.Bars[len(history.Bars)-2].Close)
		change := current.Sub(prev)
		var percent decimal.Decimal
		if !prev.IsZero() {
			percent = change.Div(prev).Mul(decimal.NewFromInt(100))
		}

		quotes = append(quotes, IndexQuote{
			Symbol:  symbol,
			Name:    symbol,
			Price:   current.Round(2).InexactFloat64(),
			Change:  change.Round(2).InexactFloat64(),
			Percent: percent.Round(2).InexactFloat64(),
		})
	}
	return quotes
}

// Chart returns daily closes for period. Unknown symbols wrap errors.ErrNotFound.
func (s *Service) Chart(ctx context.Context, symbol, period string) ([]ChartPoint, error) {
	if period == "" {
		period = "1mo"
	}

	history, err := s.provider.History(ctx, symbol, period)
	if err != nil {
		var verr *errors.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrNotFound, err.Error())
	}

	points := make([]ChartPoint, 0, len(history.Bars))
	for _, bar := range history.Bars {
		points = append(points, ChartPoint{
			Date:  bar.Time.Format("2006-01-02"),
			Price: decimal.NewFromFloat(bar.Close).Round(2).InexactFloat64(),
		})
	}
	return points, nil
}
