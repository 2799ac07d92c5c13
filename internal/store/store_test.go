package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interlink/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertArticle_AndRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	article := &types.Article{
		URL:             "https://example.com/roses",
		Title:           "Growing Roses",
		Excerpt:         "How to grow roses",
		MetaDescription: "A rose growing guide",
		Keywords:        []string{"roses", "gardening"},
		Categories:      []string{"Flowers"},
		Processed:       true,
	}
	require.NoError(t, s.InsertArticle(ctx, article))

	articles, err := s.Articles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	got := articles[0]
	assert.Equal(t, article.URL, got.URL)
	assert.Equal(t, article.Title, got.Title)
	assert.Equal(t, article.Keywords, got.Keywords)
	assert.Equal(t, article.Categories, got.Categories)
	assert.True(t, got.Processed)
}

func TestInsertArticle_DuplicateURLIsNoOp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &types.Article{URL: "https://example.com/a", Title: "Original", Processed: true}
	require.NoError(t, s.InsertArticle(ctx, first))

	// Re-inserting the same URL must not duplicate or rewrite the row.
	second := &types.Article{URL: "https://example.com/a", Title: "Changed", Processed: true}
	require.NoError(t, s.InsertArticle(ctx, second))

	articles, err := s.Articles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Original", articles[0].Title)
}

func TestKnownURLs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertArticle(ctx, &types.Article{URL: "https://example.com/done", Processed: true}))
	require.NoError(t, s.InsertArticle(ctx, &types.Article{URL: "https://example.com/pending", Processed: false}))

	known, err := s.KnownURLs(ctx)
	require.NoError(t, err)

	assert.True(t, known["https://example.com/done"])
	// Unprocessed rows stay eligible for the next run.
	assert.False(t, known["https://example.com/pending"])
}

func TestArticles_OrderedByURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, url := range []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"} {
		require.NoError(t, s.InsertArticle(ctx, &types.Article{URL: url, Processed: true}))
	}

	articles, err := s.Articles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "https://example.com/a", articles[0].URL)
	assert.Equal(t, "https://example.com/b", articles[1].URL)
	assert.Equal(t, "https://example.com/c", articles[2].URL)
}

func TestReplaceRecommendations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []types.Recommendation{
		{SourceURL: "a", TargetURL: "b", Score: 0.9, AnchorText: "B", Position: 0},
		{SourceURL: "b", TargetURL: "a", Score: 0.9, AnchorText: "A", Position: 0},
	}
	require.NoError(t, s.ReplaceRecommendations(ctx, first))

	recs, err := s.Recommendations(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// A second run fully rewrites the table.
	second := []types.Recommendation{
		{SourceURL: "a", TargetURL: "c", Score: 0.5, AnchorText: "C", Position: 0},
	}
	require.NoError(t, s.ReplaceRecommendations(ctx, second))

	recs, err = s.Recommendations(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c", recs[0].TargetURL)
}

func TestReplaceRecommendations_Empty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceRecommendations(ctx, []types.Recommendation{
		{SourceURL: "a", TargetURL: "b", Score: 0.9, Position: 0},
	}))
	require.NoError(t, s.ReplaceRecommendations(ctx, nil))

	recs, err := s.Recommendations(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecordCrawlRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := &types.CrawlRun{
		SitemapURL:  "https://example.com/sitemap.xml",
		StartedAt:   time.Now().UTC().Add(-time.Minute),
		CompletedAt: time.Now().UTC(),
		Attempted:   10,
		Saved:       8,
		Skipped:     2,
	}
	require.NoError(t, s.RecordCrawlRun(ctx, run))

	runs, err := s.CrawlRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 10, runs[0].Attempted)
	assert.Equal(t, 8, runs[0].Saved)
	assert.Equal(t, 2, runs[0].Skipped)
}
