package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/mounirl1/replystack-sub000/internal/pipeline"
	cdpopts "github.com/mounirl1/replystack-sub000/pkg/chromedp"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

// mutationObserverScript installs a counter the poller reads; review widgets
// render asynchronously, so DOM mutations are the re-extraction signal.
const mutationObserverScript = `
	(function() {
		if (window.__rsMutations !== undefined) { return; }
		window.__rsMutations = 0;
		new MutationObserver(function() { window.__rsMutations++; })
			.observe(document.documentElement, { childList: true, subtree: true, characterData: true });
	})()
`

// Tab is one open background tab holding a provider page.
type Tab struct {
	b      *Browser
	ctx    context.Context
	cancel context.CancelFunc
	url    string
}

// OpenBackground opens a new tab, applies the stealth profile and loads url.
// The tab stays open until Close; it holds a semaphore slot the whole time.
func (b *Browser) OpenBackground(ctx context.Context, url string) (*Tab, error) {
	if err := b.AcquireWithContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire browser slot: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)

	tasks := chromedp.Tasks{
		// Set User-Agent via emulation API (more reliable than command-line flag)
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(userAgent).
				WithAcceptLanguage("en-US,en;q=0.9").
				WithPlatform("macOS").
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetExtraHTTPHeaders(network.Headers{
				"Accept-Language":           "en-US,en;q=0.9",
				"Upgrade-Insecure-Requests": "1",
				"DNT":                       "1",
			}).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(cdpopts.GetStealthScripts()).Do(ctx)
			return err
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.pageLoadDelay),
		chromedp.Evaluate(mutationObserverScript, nil),
	}

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		tabCancel()
		b.Release()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	logger.Log.Debug().Str("url", url).Msg("background tab opened")
	return &Tab{b: b, ctx: tabCtx, cancel: tabCancel, url: url}, nil
}

func (t *Tab) URL() string {
	return t.url
}

// Snapshot reads the tab's current markup as a parsed page. The tab keeps its
// own context; the caller's deadline is layered on top when present.
func (t *Tab) Snapshot(ctx context.Context) (*pipeline.Page, error) {
	runCtx := t.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(t.ctx, deadline)
		defer cancel()
	}

	var html, finalURL string
	tasks := chromedp.Tasks{
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("snapshot tab: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse tab html: %w", err)
	}
	return &pipeline.Page{URL: finalURL, Doc: doc}, nil
}

// MutationCount reads the in-page mutation counter.
func (t *Tab) MutationCount(ctx context.Context) (int64, error) {
	runCtx := t.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(t.ctx, deadline)
		defer cancel()
	}

	var n int64
	if err := chromedp.Run(runCtx, chromedp.Evaluate(`window.__rsMutations || 0`, &n)); err != nil {
		return 0, fmt.Errorf("read mutation counter: %w", err)
	}
	return n, nil
}

// WatchMutations polls the mutation counter and invokes fn whenever it
// advanced since the previous poll. Blocks until ctx ends or the tab dies.
func (t *Tab) WatchMutations(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			n, err := t.MutationCount(ctx)
			if err != nil {
				logger.Log.Debug().Err(err).Str("url", t.url).Msg("mutation poll failed")
				continue
			}
			if n != last {
				last = n
				fn()
			}
		}
	}
}

// Close tears the tab down and frees its semaphore slot.
func (t *Tab) Close() {
	t.cancel()
	t.b.Release()
	logger.Log.Debug().Str("url", t.url).Msg("background tab closed")
}
