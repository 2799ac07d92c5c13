package crawling

import (
	"context"
	"time"

	"github.com/jonathan/interlink/internal/fetch"
	"github.com/jonathan/interlink/internal/sitemap"
	"github.com/jonathan/interlink/internal/store"
	"github.com/jonathan/interlink/internal/types"
)

// Options configures a collect run.
type Options struct {
	MaxPages   int            // Per-run cap on pages attempted
	UseBrowser bool           // Headless browser fallback for JS-rendered pages
	Fetch      *fetch.Options // HTTP options; nil uses defaults
}

// Collect fetches the sitemap, visits every listed URL not already known,
// extracts metadata and appends one article row per success. Per-URL
// failures are skipped, never retried within the run; the URL stays
// unmarked and is eligible again next run.
func Collect(ctx context.Context, st *store.Store, sitemapURL string, opts Options) (*types.CrawlRun, error) {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}

	run := &types.CrawlRun{
		SitemapURL: sitemapURL,
		StartedAt:  time.Now().UTC(),
	}

	urls, err := sitemap.FetchURLs(ctx, sitemapURL, opts.Fetch)
	if err != nil {
		return nil, &CrawlError{Message: "failed to fetch sitemap", Cause: err}
	}

	known, err := st.KnownURLs(ctx)
	if err != nil {
		return nil, &CrawlError{Message: "failed to load known URLs", Cause: err}
	}

	// Filter to new URLs, preserving sitemap order, then apply the cap.
	toProcess := make([]string, 0, len(urls))
	for _, u := range urls {
		if !known[u] {
			toProcess = append(toProcess, u)
		}
	}
	if len(toProcess) > opts.MaxPages {
		toProcess = toProcess[:opts.MaxPages]
	}

	for _, pageURL := range toProcess {
		run.Attempted++

		html, err := fetchPage(ctx, pageURL, opts)
		if err != nil {
			run.Skipped++
			continue
		}

		article, err := ExtractMetadata(html, pageURL)
		if err != nil {
			run.Skipped++
			continue
		}
		article.Processed = true

		if err := st.InsertArticle(ctx, article); err != nil {
			return nil, &CrawlError{Message: "failed to save article", Cause: err}
		}
		run.Saved++
	}

	run.CompletedAt = time.Now().UTC()
	if err := st.RecordCrawlRun(ctx, run); err != nil {
		return nil, &CrawlError{Message: "failed to record crawl run", Cause: err}
	}

	return run, nil
}

// fetchPage retrieves a page over HTTP, falling back to a headless browser
// render when enabled and the response looks like a JavaScript shell.
func fetchPage(ctx context.Context, pageURL string, opts Options) (string, error) {
	result, err := fetch.URL(ctx, pageURL, opts.Fetch)
	if err != nil {
		return "", err
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(result.Body) {
		rendered, err := fetch.WithBrowser(ctx, pageURL, fetch.DefaultBrowserTimeout)
		if err == nil {
			return rendered, nil
		}
		// Fall back to the plain HTTP body on browser failure.
	}

	return result.Body, nil
}
