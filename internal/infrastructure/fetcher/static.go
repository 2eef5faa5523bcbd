package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/fetch"
)

// StaticFetcher retrieves static HTML pages with a timed GET and extracts
// the title text plus the visible body text.
type StaticFetcher struct {
	client    *http.Client
	userAgent string
}

var _ fetch.Fetcher = (*StaticFetcher)(nil)

// NewStaticFetcher wires an HTTP client bounded by the configured timeout.
func NewStaticFetcher(client *http.Client, userAgent string, timeout time.Duration) *StaticFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &StaticFetcher{client: client, userAgent: userAgent}
}

// Mode identifies the strategy inside the registry.
func (f *StaticFetcher) Mode() domain.FetchMode {
	return domain.FetchStatic
}

// Fetch issues the GET and parses the returned markup. A missing title
// yields an empty string, not a failure.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (fetch.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetch.Result{}, fetch.NewError(fetch.KindTransport, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fetch.Result{}, fetch.NewError(classifyNetErr(err), url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fetch.Result{}, fetch.NewError(fetch.KindTransport, url, fmt.Errorf("unexpected status %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fetch.Result{}, fetch.NewError(fetch.KindTransport, url, fmt.Errorf("parse document: %w", err))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()
	body := doc.Find("body")
	text := body.Text()
	if body.Length() == 0 {
		text = doc.Text()
	}

	return fetch.Result{Title: title, Body: collapseWhitespace(text)}, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func classifyNetErr(err error) fetch.ErrorKind {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return fetch.KindTimeout
	}
	return fetch.KindTransport
}
