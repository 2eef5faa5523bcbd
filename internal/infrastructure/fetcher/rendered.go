package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/fetch"
)

// RenderedFetcher loads script-driven pages in a headless browsing context
// and extracts the rendered title plus the full rendered markup.
type RenderedFetcher struct {
	userAgent   string
	timeout     time.Duration
	settleDelay time.Duration
}

var _ fetch.Fetcher = (*RenderedFetcher)(nil)

// NewRenderedFetcher configures the headless fetch. The timeout bounds the
// whole operation; the settle delay runs after navigation completes.
func NewRenderedFetcher(userAgent string, timeout, settleDelay time.Duration) *RenderedFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if settleDelay <= 0 {
		settleDelay = 2 * time.Second
	}
	return &RenderedFetcher{userAgent: userAgent, timeout: timeout, settleDelay: settleDelay}
}

// Mode identifies the strategy inside the registry.
func (f *RenderedFetcher) Mode() domain.FetchMode {
	return domain.FetchRendered
}

// Fetch navigates the URL headlessly and returns rendered title and markup.
func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (fetch.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(f.userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var title, body string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.settleDelay),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &body),
	)
	if err != nil {
		kind := fetch.KindRender
		if errors.Is(err, context.DeadlineExceeded) {
			kind = fetch.KindTimeout
		}
		return fetch.Result{}, fetch.NewError(kind, url, err)
	}

	return fetch.Result{Title: title, Body: body}, nil
}
