package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/internal/adapters/ratelimit"
	"stockadvisor/internal/adapters/retry"
	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Result is one organic search hit.
type Result struct {
	Title string
	URL   string
	Body  string
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// DuckDuckGo scrapes the no-JS HTML results page.
type DuckDuckGo struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *ratelimit.Limiter
	retry     *retry.Policy
	log       *logger.Logger
}

// StatusError is a non-200 answer from the search endpoint.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search returned status %d", e.Status)
}

// StatusCode lets the retry policy classify the failure.
func (e *StatusError) StatusCode() int { return e.Status }

func (e *StatusError) Unwrap() error { return errors.ErrUnavailable }

func NewDuckDuckGo(cfg config.SearchConfig, log *logger.Logger) *DuckDuckGo {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.MaxRetries

	return &DuckDuckGo{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   ratelimit.NewLimiter("duckduckgo", cfg.RateLimit),
		retry:     retry.New(retryCfg),
		log:       log.With("component", "duckduckgo"),
	}
}

// Search returns at most maxResults hits, ads excluded.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("query", "required", query)
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	doc, err := retry.Do(ctx, d.retry, func() (*goquery.Document, error) {
		return d.fetch(ctx, query)
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCalls.WithLabelValues("duckduckgo", "html", status).Inc()
	if err != nil {
		return nil, err
	}

	return parseResults(doc, maxResults), nil
}

func (d *DuckDuckGo) fetch(ctx context.Context, query string) (*goquery.Document, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/html/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build search request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.log.Debugw("Search request failed", "status", resp.StatusCode)
		return nil, &StatusError{Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse search results")
	}
	return doc, nil
}

func parseResults(doc *goquery.Document, maxResults int) []Result {
	var results []Result
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		results = append(results, Result{
			Title: title,
			URL:   resolveRedirect(href),
			Body:  strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return len(results) < maxResults
	})
	return results
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// Format renders results the way the search_web tool returns them.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: %s\n  %s\n", r.Title, r.URL, r.Body)
	}
	return strings.TrimRight(b.String(), "\n")
}

var _ Searcher = (*DuckDuckGo)(nil)
