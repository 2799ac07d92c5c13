// Package recommend computes ranked internal-link recommendations from
// article embeddings.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/interlink/internal/embedding"
	"github.com/jonathan/interlink/internal/store"
	"github.com/jonathan/interlink/internal/types"
)

// Result summarizes one recommend run.
type Result struct {
	Articles        int
	Recommendations []types.Recommendation
	CacheHit        bool
}

// Run loads the article store, embeds every article (through the cache),
// ranks top-K targets per source and atomically rewrites the
// recommendation table. With fewer than two articles it writes an empty
// table and returns normally.
func Run(ctx context.Context, st *store.Store, client embedding.Client, cache *embedding.Cache, topK int) (*Result, error) {
	articles, err := st.Articles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	if len(articles) < 2 {
		if err := st.ReplaceRecommendations(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to write empty table: %w", err)
		}
		return &Result{Articles: len(articles)}, nil
	}

	urls := make([]string, len(articles))
	texts := make([]string, len(articles))
	for i := range articles {
		urls[i] = articles[i].URL
		texts[i] = articles[i].CombinedText()
	}

	vectors, cacheHit, err := cache.GetOrCompute(ctx, client, urls, texts)
	if err != nil {
		return nil, err
	}

	recs := Rank(articles, vectors, topK)

	if err := st.ReplaceRecommendations(ctx, recs); err != nil {
		return nil, fmt.Errorf("failed to write recommendations: %w", err)
	}

	return &Result{
		Articles:        len(articles),
		Recommendations: recs,
		CacheHit:        cacheHit,
	}, nil
}

// Rank selects, for each source article, the top-K other articles by
// descending cosine similarity. K is clamped to n-1, self-pairs are
// excluded and equal scores are broken by stable input order.
func Rank(articles []types.Article, vectors [][]float32, topK int) []types.Recommendation {
	n := len(articles)
	if n < 2 || len(vectors) != n {
		return nil
	}

	k := topK
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	recs := make([]types.Recommendation, 0, n*k)

	for i := range articles {
		candidates := make([]int, 0, n-1)
		scores := make([]float64, n)
		for j := range articles {
			if j == i {
				continue
			}
			scores[j] = CosineSimilarity(vectors[i], vectors[j])
			candidates = append(candidates, j)
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			return scores[candidates[a]] > scores[candidates[b]]
		})

		for pos, j := range candidates[:k] {
			recs = append(recs, types.Recommendation{
				SourceURL:  articles[i].URL,
				TargetURL:  articles[j].URL,
				Score:      scores[j],
				AnchorText: articles[j].Title,
				Position:   pos,
			})
		}
	}

	return recs
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Zero-length or mismatched vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
