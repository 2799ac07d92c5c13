// Package store provides SQLite-backed persistence for articles,
// recommendations and crawl runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/uuid"
	"github.com/jonathan/interlink/internal/types"
)

// Store wraps the SQLite database connection and provides storage operations.
type Store struct {
	conn *sql.DB
}

// Open creates a database connection at path and initializes the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT '[]',
		categories TEXT NOT NULL DEFAULT '[]',
		processed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recommendations (
		source_url TEXT NOT NULL,
		target_url TEXT NOT NULL,
		score REAL NOT NULL,
		anchor_text TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		PRIMARY KEY (source_url, target_url)
	);

	CREATE INDEX IF NOT EXISTS idx_recommendations_source ON recommendations(source_url, position);

	CREATE TABLE IF NOT EXISTS crawl_runs (
		id TEXT PRIMARY KEY,
		sitemap_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		attempted INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// InsertArticle appends a new article row. Existing rows are never
// rewritten: inserting a URL that is already present is a no-op.
func (s *Store) InsertArticle(ctx context.Context, a *types.Article) error {
	keywords, err := json.Marshal(a.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	categories, err := json.Marshal(a.Categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO articles
		 (url, title, excerpt, meta_description, keywords, categories, processed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.URL, a.Title, a.Excerpt, a.MetaDescription,
		string(keywords), string(categories), boolToInt(a.Processed), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert article %s: %w", a.URL, err)
	}
	return nil
}

// KnownURLs returns the set of URLs already processed, checked by the
// collector before each fetch.
func (s *Store) KnownURLs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT url FROM articles WHERE processed = 1`)
	if err != nil {
		return nil, fmt.Errorf("query known urls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	known := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan known url: %w", err)
		}
		known[url] = true
	}
	return known, rows.Err()
}

// Articles returns all article rows ordered by URL ascending. Every
// downstream stage relies on this ordering being deterministic.
func (s *Store) Articles(ctx context.Context) ([]types.Article, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT url, title, excerpt, meta_description, keywords, categories, processed
		 FROM articles ORDER BY url ASC`)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var articles []types.Article
	for rows.Next() {
		var a types.Article
		var keywords, categories string
		var processed int
		if err := rows.Scan(&a.URL, &a.Title, &a.Excerpt, &a.MetaDescription,
			&keywords, &categories, &processed); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &a.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords for %s: %w", a.URL, err)
		}
		if err := json.Unmarshal([]byte(categories), &a.Categories); err != nil {
			return nil, fmt.Errorf("unmarshal categories for %s: %w", a.URL, err)
		}
		a.Processed = processed == 1
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ReplaceRecommendations rewrites the recommendation table inside one
// transaction. Nothing is written unless every row inserts cleanly.
func (s *Store) ReplaceRecommendations(ctx context.Context, recs []types.Recommendation) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations`); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}

	for _, r := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recommendations (source_url, target_url, score, anchor_text, position)
			 VALUES (?, ?, ?, ?, ?)`,
			r.SourceURL, r.TargetURL, r.Score, r.AnchorText, r.Position,
		)
		if err != nil {
			return fmt.Errorf("insert recommendation %s -> %s: %w", r.SourceURL, r.TargetURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recommendations: %w", err)
	}
	return nil
}

// Recommendations returns all recommendation rows ordered by source URL
// and rank position.
func (s *Store) Recommendations(ctx context.Context) ([]types.Recommendation, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT source_url, target_url, score, anchor_text, position
		 FROM recommendations ORDER BY source_url ASC, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []types.Recommendation
	for rows.Next() {
		var r types.Recommendation
		if err := rows.Scan(&r.SourceURL, &r.TargetURL, &r.Score, &r.AnchorText, &r.Position); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// RecordCrawlRun stores the audit row for one collect invocation.
func (s *Store) RecordCrawlRun(ctx context.Context, run *types.CrawlRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO crawl_runs (id, sitemap_url, started_at, completed_at, attempted, saved, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.SitemapURL, run.StartedAt, run.CompletedAt,
		run.Attempted, run.Saved, run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("record crawl run: %w", err)
	}
	return nil
}

// CrawlRuns returns recorded collect invocations, most recent first.
func (s *Store) CrawlRuns(ctx context.Context) ([]types.CrawlRun, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, sitemap_url, started_at, completed_at, attempted, saved, skipped
		 FROM crawl_runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query crawl runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []types.CrawlRun
	for rows.Next() {
		var run types.CrawlRun
		var id string
		if err := rows.Scan(&id, &run.SitemapURL, &run.StartedAt, &run.CompletedAt,
			&run.Attempted, &run.Saved, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan crawl run: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse crawl run id %s: %w", id, err)
		}
		run.ID = parsed
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
