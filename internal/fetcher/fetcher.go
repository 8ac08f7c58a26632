// Package fetcher downloads dining hall menu pages and parses them
// into menu entries.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dining_alerts/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError reports a failed menu retrieval for one hall.
type FetchError struct {
	Hall string
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch menu for %s (%s): %v", e.Hall, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads and parses dining hall menu pages.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 15 * time.Second,
	}
}

// SetTimeout overrides the default per-request timeout.
func (f *Fetcher) SetTimeout(d time.Duration) {
	f.timeout = d
}

// Fetch downloads the menu page for a hall and returns its entries for
// the given date. An HTTP or network failure returns a *FetchError.
// A page that yields no recognizable menu sections returns zero entries
// without error; the caller decides whether that is worth logging.
func (f *Fetcher) Fetch(ctx context.Context, hall, url string, date time.Time) ([]model.MenuEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Hall: hall, URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", "DiningAlerts/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Hall: hall, URL: url, Err: fmt.Errorf("http get: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Hall: hall, URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body := io.LimitReader(resp.Body, 5*1024*1024)
	entries, err := ParseMenu(body, hall, date)
	if err != nil {
		return nil, &FetchError{Hall: hall, URL: url, Err: err}
	}
	return entries, nil
}

// ParseMenu extracts menu entries from a hall's menu page markup.
// The page is organized as one section per meal period with the dish
// names inside. Entries come back in document order, so they are
// already grouped by meal period.
func ParseMenu(r io.Reader, hall string, date time.Time) ([]model.MenuEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var entries []model.MenuEntry
	doc.Find("section.site-panel--daypart").Each(func(_ int, sec *goquery.Selection) {
		period := cleanText(sec.Find(".site-panel__daypart-title").First().Text())
		if period == "" {
			return
		}
		sec.Find(".site-panel__daypart-item-title").Each(func(_ int, item *goquery.Selection) {
			name := cleanText(item.Text())
			if name == "" {
				return
			}
			entries = append(entries, model.MenuEntry{
				Hall:       hall,
				MealPeriod: period,
				Item:       name,
				Date:       date,
			})
		})
	})
	return entries, nil
}

// cleanText trims and collapses the whitespace goquery leaves behind.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
