package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// cacheEntry is the on-disk cache payload. Vectors[i] corresponds to
// URLs[i], and URLs must equal the store's current ordering exactly for
// the entry to be reused.
type cacheEntry struct {
	Signature string      `json:"signature"`
	Model     string      `json:"model"`
	URLs      []string    `json:"urls"`
	Vectors   [][]float32 `json:"vectors"`
}

// Cache is a content-addressed embedding cache backed by a single JSON
// file. Deleting the file at any time is safe; it only forces recompute.
type Cache struct {
	path string
}

// NewCache creates a cache at the given file path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Signature builds a fingerprint that changes whenever the model, the row
// set, the row order or any text changes. NUL separators prevent
// accidental collisions between adjacent values.
func Signature(model string, urls, texts []string) string {
	h := sha256.New()
	h.Write([]byte(model))
	for i := range urls {
		h.Write([]byte{0})
		h.Write([]byte(urls[i]))
		h.Write([]byte{0})
		if i < len(texts) {
			h.Write([]byte(texts[i]))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetOrCompute returns cached vectors when the stored signature matches,
// otherwise computes fresh embeddings through the client and overwrites
// the cache. The boolean reports whether the cache was hit.
func (c *Cache) GetOrCompute(ctx context.Context, client Client, urls, texts []string) ([][]float32, bool, error) {
	signature := Signature(client.Model(), urls, texts)

	if entry := c.load(); entry != nil && c.valid(entry, signature, client.Model(), urls) {
		return entry.Vectors, true, nil
	}

	vectors, err := client.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to compute embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, false, fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", len(vectors), len(texts))
	}

	entry := &cacheEntry{
		Signature: signature,
		Model:     client.Model(),
		URLs:      urls,
		Vectors:   vectors,
	}
	if err := c.save(entry); err != nil {
		return nil, false, fmt.Errorf("failed to save embedding cache: %w", err)
	}

	return vectors, false, nil
}

// load reads the cache file. Any read or parse issue yields nil, which
// triggers a rebuild.
func (c *Cache) load() *cacheEntry {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	return &entry
}

// valid checks signature, model, vector shape and exact URL ordering.
// The signature already covers all of these; the explicit checks guard
// against a hand-edited or truncated cache file.
func (c *Cache) valid(entry *cacheEntry, signature, model string, urls []string) bool {
	if entry.Signature != signature || entry.Model != model {
		return false
	}
	if len(entry.Vectors) != len(urls) || len(entry.URLs) != len(urls) {
		return false
	}
	for i := range urls {
		if entry.URLs[i] != urls[i] {
			return false
		}
	}
	return true
}

// save writes the entry to a temp file and renames it into place so a
// crash never leaves a half-written cache.
func (c *Cache) save(entry *cacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
