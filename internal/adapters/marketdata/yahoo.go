package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/internal/adapters/ratelimit"
	"stockadvisor/internal/adapters/retry"
	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

const providerName = "yahoo"

// Yahoo talks to the public Yahoo Finance JSON endpoints.
//
// Chart and search endpoints are open. quoteSummary needs a session cookie
// plus a crumb, fetched lazily and refreshed once on 401.
type Yahoo struct {
	cfg     config.MarketDataConfig
	http    *http.Client
	limiter *ratelimit.Limiter
	retry   *retry.Policy
	cache   Cache
	log     *logger.Logger

	crumbMu sync.Mutex
	crumb   string
}

// NewYahoo builds a provider. cache may be nil.
func NewYahoo(cfg config.MarketDataConfig, cache Cache, log *logger.Logger) (*Yahoo, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "cookie jar")
	}

	return &Yahoo{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		limiter: ratelimit.NewLimiter(providerName, cfg.RateLimit),
		retry:   retry.New(retry.DefaultConfig()),
		cache:   cache,
		log:     log.With("component", "yahoo"),
	}, nil
}

// History returns daily bars for period (1mo, 6mo, 1y, ...), oldest first.
func (y *Yahoo) History(ctx context.Context, symbol, period string) (*History, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, errors.NewValidationError("symbol", "required", symbol)
	}
	if period == "" {
		period = "1mo"
	}
	if !ValidPeriods[period] {
		return nil, errors.NewValidationError("period", "unsupported period", period)
	}

	cacheKey := fmt.Sprintf("yahoo:chart:%s:%s", symbol, period)
	if y.cache != nil {
		var cached History
		if err := y.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached.Bars) > 0 {
			return &cached, nil
		}
	}

	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", "1d")
	q.Set("includePrePost", "false")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.cfg.ChartBaseURL, url.PathEscape(symbol), q.Encode())

	body, err := y.get(ctx, "chart", endpoint)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
		}
		return nil, err
	}

	history, err := parseChart(body, symbol, period)
	if err != nil {
		return nil, err
	}

	if y.cache != nil && y.cfg.CacheTTL > 0 {
		if err := y.cache.Set(ctx, cacheKey, history, y.cfg.CacheTTL); err != nil {
			y.log.Debugf("chart cache write failed for %s: %v", symbol, err)
		}
	}
	return history, nil
}

func parseChart(body []byte, symbol, period string) (*History, error) {
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		desc := gjson.GetBytes(body, "chart.error.description").String()
		if desc == "" {
			desc = "no chart data"
		}
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s: %s", symbol, desc)
	}

	meta := result.Get("meta")
	h := &History{
		Symbol:   symbol,
		Name:     firstNonEmpty(meta.Get("longName").String(), meta.Get("shortName").String(), symbol),
		Currency: meta.Get("currency").String(),
		Period:   period,
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		h.Bars = append(h.Bars, Bar{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   at(opens, i),
			High:   at(highs, i),
			Low:    at(lows, i),
			Close:  closes[i].Float(),
			Volume: int64(at(volumes, i)),
		})
	}

	if len(h.Bars) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s: empty history", symbol)
	}
	return h, nil
}

// News returns the latest headlines from the search endpoint.
func (y *Yahoo) News(ctx context.Context, symbol string, limit int) ([]NewsItem, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, errors.NewValidationError("symbol", "required", symbol)
	}
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{}
	q.Set("q", symbol)
	q.Set("quotesCount", "0")
	q.Set("newsCount", fmt.Sprint(limit))
	endpoint := fmt.Sprintf("%s/v1/finance/search?%s", y.cfg.ChartBaseURL, q.Encode())

	body, err := y.get(ctx, "news", endpoint)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	gjson.GetBytes(body, "news").ForEach(func(_, n gjson.Result) bool {
		items = append(items, NewsItem{
			Title:     n.Get("title").String(),
			Link:      n.Get("link").String(),
			Publisher: n.Get("publisher").String(),
			Published: time.Unix(n.Get("providerPublishTime").Int(), 0).UTC(),
		})
		return len(items) < limit
	})
	return items, nil
}

// Profile returns sector, industry, and business summary.
func (y *Yahoo) Profile(ctx context.Context, symbol string) (*Profile, error) {
	res, err := y.quoteSummary(ctx, symbol, "assetProfile", "price")
	if err != nil {
		return nil, err
	}
	p := res.Get("assetProfile")
	return &Profile{
		Symbol:    normalizeSymbol(symbol),
		Name:      firstNonEmpty(res.Get("price.longName").String(), res.Get("price.shortName").String()),
		Sector:    p.Get("sector").String(),
		Industry:  p.Get("industry").String(),
		Website:   p.Get("website").String(),
		Employees: p.Get("fullTimeEmployees").Int(),
		Summary:   p.Get("longBusinessSummary").String(),
	}, nil
}

// Stats returns price, ranges, volume, and valuation.
func (y *Yahoo) Stats(ctx context.Context, symbol string) (*KeyStats, error) {
	res, err := y.quoteSummary(ctx, symbol, "price", "summaryDetail")
	if err != nil {
		return nil, err
	}
	price := res.Get("price")
	detail := res.Get("summaryDetail")
	return &KeyStats{
		Symbol:           normalizeSymbol(symbol),
		Name:             firstNonEmpty(price.Get("longName").String(), price.Get("shortName").String()),
		Currency:         price.Get("currency").String(),
		Price:            price.Get("regularMarketPrice.raw").Float(),
		DayLow:           firstPositive(price.Get("regularMarketDayLow.raw").Float(), detail.Get("dayLow.raw").Float()),
		DayHigh:          firstPositive(price.Get("regularMarketDayHigh.raw").Float(), detail.Get("dayHigh.raw").Float()),
		FiftyTwoWeekLow:  detail.Get("fiftyTwoWeekLow.raw").Float(),
		FiftyTwoWeekHigh: detail.Get("fiftyTwoWeekHigh.raw").Float(),
		Volume:           price.Get("regularMarketVolume.raw").Int(),
		MarketCap:        firstPositive(price.Get("marketCap.raw").Float(), detail.Get("marketCap.raw").Float()),
		TrailingPE:       detail.Get("trailingPE.raw").Float(),
		ForwardPE:        detail.Get("forwardPE.raw").Float(),
		DividendYield:    detail.Get("dividendYield.raw").Float(),
	}, nil
}

// Fund returns ETF/mutual fund metadata.
func (y *Yahoo) Fund(ctx context.Context, symbol string) (*FundInfo, error) {
	res, err := y.quoteSummary(ctx, symbol, "price", "summaryDetail", "fundProfile", "assetProfile")
	if err != nil {
		return nil, err
	}
	fund := res.Get("fundProfile")
	return &FundInfo{
		Symbol:   normalizeSymbol(symbol),
		Name:     firstNonEmpty(res.Get("price.longName").String(), res.Get("price.shortName").String()),
		Category: fund.Get("categoryName").String(),
		Family:   fund.Get("family").String(),
		ExpenseRatio: firstPositive(
			fund.Get("feesExpensesInvestment.annualReportExpenseRatio.raw").Float(),
			res.Get("summaryDetail.expenseRatio.raw").Float(),
		),
		TotalAssets: res.Get("summaryDetail.totalAssets.raw").Float(),
		Summary:     res.Get("assetProfile.longBusinessSummary").String(),
	}, nil
}

func (y *Yahoo) quoteSummary(ctx context.Context, symbol string, modules ...string) (gjson.Result, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return gjson.Result{}, errors.NewValidationError("symbol", "required", symbol)
	}

	var body []byte
	for attempt := 0; attempt < 2; attempt++ {
		crumb, err := y.getCrumb(ctx, attempt > 0)
		if err != nil {
			return gjson.Result{}, err
		}

		q := url.Values{}
		q.Set("modules", strings.Join(modules, ","))
		q.Set("crumb", crumb)
		endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", y.cfg.SummaryBaseURL, url.PathEscape(symbol), q.Encode())

		body, err = y.get(ctx, "quote_summary", endpoint)
		if err == nil {
			break
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.Status {
			case http.StatusUnauthorized, http.StatusForbidden:
				if attempt == 0 {
					continue
				}
			case http.StatusNotFound:
				return gjson.Result{}, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
			}
		}
		return gjson.Result{}, err
	}

	result := gjson.GetBytes(body, "quoteSummary.result.0")
	if !result.Exists() {
		desc := gjson.GetBytes(body, "quoteSummary.error.description").String()
		if desc == "" {
			desc = "no summary data"
		}
		return gjson.Result{}, errors.Wrapf(errors.ErrNotFound, "symbol %s: %s", symbol, desc)
	}
	return result, nil
}

// getCrumb primes the cookie jar and fetches the anti-CSRF crumb quoteSummary requires.
func (y *Yahoo) getCrumb(ctx context.Context, refresh bool) (string, error) {
	y.crumbMu.Lock()
	defer y.crumbMu.Unlock()

	if y.crumb != "" && !refresh {
		return y.crumb, nil
	}

	// The cookie endpoint answers 404 but still sets the session cookie.
	if req, err := y.newRequest(ctx, y.cfg.CookieURL); err == nil {
		if resp, err := y.http.Do(req); err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		} else {
			y.log.Debugf("cookie priming failed: %v", err)
		}
	}

	body, err := y.get(ctx, "crumb", y.cfg.SummaryBaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", errors.Wrap(err, "fetch crumb")
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "{<") {
		return "", errors.Wrap(errors.ErrUnavailable, "yahoo returned no crumb")
	}
	y.crumb = crumb
	return crumb, nil
}

func (y *Yahoo) get(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	body, err := retry.Do(ctx, y.retry, func() ([]byte, error) {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := y.newRequest(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		resp, err := y.http.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "GET %s", endpoint)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", endpoint)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{URL: endpoint, Status: resp.StatusCode}
		}
		return data, nil
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCalls.WithLabelValues(providerName, endpoint, status).Inc()
	return body, err
}

func (y *Yahoo) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", y.cfg.UserAgent)
	req.Header.Set("Accept", "application/json,text/plain,*/*")
	return req, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func at(values []gjson.Result, i int) float64 {
	if i < len(values) {
		return values[i].Float()
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

var _ Provider = (*Yahoo)(nil)
