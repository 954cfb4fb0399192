package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

const chartJSON = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"AAPL","longName":"Apple Inc."},
"timestamp":[1704067200,1704153600,1704240000],
"indicators":{"quote":[{"open":[185.0,186.0,null],"high":[187.0,188.5,null],"low":[184.0,185.5,null],
"close":[186.5,187.25,null],"volume":[1000,2000,null]}]}}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
"assetProfile":{"sector":"Technology","industry":"Consumer Electronics","website":"https://apple.com","fullTimeEmployees":161000,"longBusinessSummary":"Apple designs phones."},
"price":{"longName":"Apple Inc.","currency":"USD","regularMarketPrice":{"raw":190.5},"regularMarketDayLow":{"raw":188.0},"regularMarketDayHigh":{"raw":191.0},"regularMarketVolume":{"raw":51000000},"marketCap":{"raw":2950000000000}},
"summaryDetail":{"fiftyTwoWeekLow":{"raw":164.1},"fiftyTwoWeekHigh":{"raw":199.6},"trailingPE":{"raw":29.4},"dividendYield":{"raw":0.005},"totalAssets":{"raw":5000000000}},
"fundProfile":{"categoryName":"Large Blend","family":"Vanguard","feesExpensesInvestment":{"annualReportExpenseRatio":{"raw":0.0003}}}
}],"error":null}}`

type fakeYahoo struct {
	*httptest.Server
	crumbCalls   atomic.Int32
	summaryCalls atomic.Int32
	rejectFirst  bool
}

func newFakeYahoo(t *testing.T) *fakeYahoo {
	t.Helper()
	f := &fakeYahoo{}
	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		f.crumbCalls.Add(1)
		_, _ = w.Write([]byte("crumb-123"))
	})
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(chartJSON))
	})
	mux.HandleFunc("/v8/finance/chart/NOPE", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})
	mux.HandleFunc("/v1/finance/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"news":[
{"title":"Apple beats estimates","link":"https://news/1","publisher":"Reuters","providerPublishTime":1704067200},
{"title":"iPhone sales slow","link":"https://news/2","publisher":"Bloomberg","providerPublishTime":1704153600},
{"title":"Third","link":"https://news/3"}]}`))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		n := f.summaryCalls.Add(1)
		if f.rejectFirst && n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "crumb-123", r.URL.Query().Get("crumb"))
		_, _ = w.Write([]byte(summaryJSON))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestYahoo(t *testing.T, f *fakeYahoo) *Yahoo {
	t.Helper()
	y, err := NewYahoo(config.MarketDataConfig{
		ChartBaseURL:   f.URL,
		SummaryBaseURL: f.URL,
		CookieURL:      f.URL + "/cookie",
		Timeout:        5 * time.Second,
		UserAgent:      "test",
	}, nil, logger.Nop())
	require.NoError(t, err)
	return y
}

func TestYahooHistory(t *testing.T) {
	y := newTestYahoo(t, newFakeYahoo(t))

	h, err := y.History(context.Background(), "aapl", "")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, "Apple Inc.", h.Name)
	require.Len(t, h.Bars, 2, "null closes are skipped")
	assert.Equal(t, []float64{186.5, 187.25}, h.Closes())
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, int64(2000), last.Volume)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), last.Time)
}

func TestYahooHistoryErrors(t *testing.T) {
	y := newTestYahoo(t, newFakeYahoo(t))

	_, err := y.History(context.Background(), "NOPE", "1mo")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = y.History(context.Background(), "AAPL", "7mo")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = y.History(context.Background(), "  ", "1mo")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestYahooNewsLimit(t *testing.T) {
	y := newTestYahoo(t, newFakeYahoo(t))

	items, err := y.News(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Apple beats estimates", items[0].Title)
	assert.Equal(t, "https://news/2", items[1].Link)
}

func TestYahooQuoteSummary(t *testing.T) {
	f := newFakeYahoo(t)
	y := newTestYahoo(t, f)
	ctx := context.Background()

	profile, err := y.Profile(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Technology", profile.Sector)
	assert.Equal(t, "Consumer Electronics", profile.Industry)
	assert.Equal(t, int64(161000), profile.Employees)

	stats, err := y.Stats(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 190.5, stats.Price)
	assert.Equal(t, 2.95e12, stats.MarketCap)
	assert.Equal(t, 29.4, stats.TrailingPE)
	assert.Equal(t, 164.1, stats.FiftyTwoWeekLow)

	fund, err := y.Fund(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Large Blend", fund.Category)
	assert.Equal(t, 0.0003, fund.ExpenseRatio)
	assert.Equal(t, 5e9, fund.TotalAssets)

	assert.Equal(t, int32(1), f.crumbCalls.Load(), "crumb is cached between calls")
}

func TestYahooRefreshesCrumbOnUnauthorized(t *testing.T) {
	f := newFakeYahoo(t)
	f.rejectFirst = true
	y := newTestYahoo(t, f)

	_, err := y.Profile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.crumbCalls.Load())
	assert.Equal(t, int32(2), f.summaryCalls.Load())
}

type mapCache struct {
	sets int
	data map[string]*History
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	h, ok := m.data[key]
	if !ok {
		return errors.ErrNotFound
	}
	*dest.(*History) = *h
	return nil
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.sets++
	m.data[key] = value.(*History)
	return nil
}

func TestYahooHistoryUsesCache(t *testing.T) {
	f := newFakeYahoo(t)
	cache := &mapCache{data: map[string]*History{}}
	y, err := NewYahoo(config.MarketDataConfig{
		ChartBaseURL: f.URL,
		Timeout:      time.Second,
		CacheTTL:     time.Minute,
	}, cache, logger.Nop())
	require.NoError(t, err)

	first, err := y.History(context.Background(), "AAPL", "1mo")
	require.NoError(t, err)
	f.Close()

	second, err := y.History(context.Background(), "AAPL", "1mo")
	require.NoError(t, err, "served from cache after the server is gone")
	assert.Equal(t, first.Closes(), second.Closes())
	assert.Equal(t, 1, cache.sets)
}
