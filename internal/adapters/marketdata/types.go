package marketdata

import (
	"context"
	"fmt"
	"time"
)

// Bar is one daily OHLCV candle.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// History is a chronologically ordered price series plus the quote metadata
// returned alongside it.
type History struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
	Bars     []Bar  `json:"bars"`
}

// Closes returns closing prices oldest first.
func (h *History) Closes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar.
func (h *History) Last() (Bar, bool) {
	if len(h.Bars) == 0 {
		return Bar{}, false
	}
	return h.Bars[len(h.Bars)-1], true
}

type NewsItem struct {
	Title     string
	Link      string
	Publisher string
	Published time.Time
}

type Profile struct {
	Symbol    string
	Name      string
	Sector    string
	Industry  string
	Website   string
	Employees int64
	Summary   string
}

// KeyStats is a snapshot of price, range, and valuation figures.
// Zero means the provider did not report the value.
type KeyStats struct {
	Symbol           string
	Name             string
	Currency         string
	Price            float64
	DayLow           float64
	DayHigh          float64
	FiftyTwoWeekLow  float64
	FiftyTwoWeekHigh float64
	Volume           int64
	MarketCap        float64
	TrailingPE       float64
	ForwardPE        float64
	DividendYield    float64
}

type FundInfo struct {
	Symbol       string
	Name         string
	Category     string
	Family       string
	ExpenseRatio float64
	TotalAssets  float64
	Summary      string
}

// Provider fetches market data for the tool server and the HTTP API.
type Provider interface {
	History(ctx context.Context, symbol, period string) (*History, error)
	News(ctx context.Context, symbol string, limit int) ([]NewsItem, error)
	Profile(ctx context.Context, symbol string) (*Profile, error)
	Stats(ctx context.Context, symbol string) (*KeyStats, error)
	Fund(ctx context.Context, symbol string) (*FundInfo, error)
}

// Cache stores JSON-encodable values with a TTL. Implemented by the redis adapter.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// HTTPError is a non-2xx response from the provider.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// StatusCode lets the retry policy classify the failure.
func (e *HTTPError) StatusCode() int { return e.Status }

// ValidPeriods are the history ranges the chart endpoint accepts.
var ValidPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}
