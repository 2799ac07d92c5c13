package crawling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interlink/internal/store"
)

func pageHTML(title string) string {
	return `<html><head>
	<title>` + title + `</title>
	<meta name="description" content="About ` + title + `">
	</head><body><p>body</p></body></html>`
}

// newCrawlServer serves a sitemap over /sitemap.xml and article pages
// underneath it. failPaths respond with HTTP 500.
func newCrawlServer(t *testing.T, paths []string, failPaths map[string]bool) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var fetches atomic.Int64
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		body := `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
		for _, p := range paths {
			body += `<url><loc>` + server.URL + p + `</loc></url>`
		}
		body += `</urlset>`
		_, _ = w.Write([]byte(body))
	})

	for _, p := range paths {
		path := p
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			fetches.Add(1)
			if failPaths[path] {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(pageHTML(path)))
		})
	}

	return server, &fetches
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollect_SavesAllPages(t *testing.T) {
	server, _ := newCrawlServer(t, []string{"/a", "/b", "/c"}, nil)
	st := openTestStore(t)

	run, err := Collect(context.Background(), st, server.URL+"/sitemap.xml", Options{MaxPages: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, run.Attempted)
	assert.Equal(t, 3, run.Saved)
	assert.Equal(t, 0, run.Skipped)

	articles, err := st.Articles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.True(t, articles[0].Processed)
}

func TestCollect_Idempotent(t *testing.T) {
	server, fetches := newCrawlServer(t, []string{"/a", "/b"}, nil)
	st := openTestStore(t)
	ctx := context.Background()
	sitemapURL := server.URL + "/sitemap.xml"

	_, err := Collect(ctx, st, sitemapURL, Options{MaxPages: 10})
	require.NoError(t, err)
	firstFetches := fetches.Load()

	run, err := Collect(ctx, st, sitemapURL, Options{MaxPages: 10})
	require.NoError(t, err)

	// Second run against an unchanged sitemap: nothing attempted, no
	// duplicate rows, no page refetched.
	assert.Equal(t, 0, run.Attempted)
	assert.Equal(t, firstFetches, fetches.Load())

	articles, err := st.Articles(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestCollect_FailedPageSkippedAndRetriedNextRun(t *testing.T) {
	failing := map[string]bool{"/b": true}
	server, _ := newCrawlServer(t, []string{"/a", "/b", "/c"}, failing)
	st := openTestStore(t)
	ctx := context.Background()
	sitemapURL := server.URL + "/sitemap.xml"

	run, err := Collect(ctx, st, sitemapURL, Options{MaxPages: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, run.Attempted)
	assert.Equal(t, 2, run.Saved)
	assert.Equal(t, 1, run.Skipped)

	// The failed URL stays unknown and is attempted again next run.
	failing["/b"] = false
	run, err = Collect(ctx, st, sitemapURL, Options{MaxPages: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Attempted)
	assert.Equal(t, 1, run.Saved)

	articles, err := st.Articles(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestCollect_RespectsMaxPages(t *testing.T) {
	server, _ := newCrawlServer(t, []string{"/a", "/b", "/c", "/d"}, nil)
	st := openTestStore(t)
	ctx := context.Background()
	sitemapURL := server.URL + "/sitemap.xml"

	run, err := Collect(ctx, st, sitemapURL, Options{MaxPages: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 2, run.Saved)

	// The next run picks up where the cap cut off.
	run, err = Collect(ctx, st, sitemapURL, Options{MaxPages: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Saved)

	articles, err := st.Articles(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, 4)
}

func TestCollect_SitemapFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()
	st := openTestStore(t)

	_, err := Collect(context.Background(), st, server.URL+"/sitemap.xml", Options{MaxPages: 10})
	require.Error(t, err)

	var crawlErr *CrawlError
	assert.ErrorAs(t, err, &crawlErr)
}

func TestCollect_RecordsCrawlRun(t *testing.T) {
	server, _ := newCrawlServer(t, []string{"/a"}, nil)
	st := openTestStore(t)
	ctx := context.Background()

	_, err := Collect(ctx, st, server.URL+"/sitemap.xml", Options{MaxPages: 10})
	require.NoError(t, err)

	runs, err := st.CrawlRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Saved)
	assert.False(t, runs[0].StartedAt.IsZero())
}
