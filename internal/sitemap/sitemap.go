// Package sitemap parses sitemap XML and sitemap index files into the
// ordered list of article URLs that seeds the collector.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jonathan/interlink/internal/fetch"
)

// xmlURLSet is the root element of a standard sitemap XML file.
type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlURL `xml:"url"`
}

// xmlURL is a single <url> entry inside a <urlset>.
type xmlURL struct {
	Loc string `xml:"loc"`
}

// xmlSitemapIndex is the root element of a sitemap index XML file.
type xmlSitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

// xmlSitemap is a single <sitemap> entry inside a <sitemapindex>.
type xmlSitemap struct {
	Loc string `xml:"loc"`
}

// Parse parses sitemap XML and returns the contained URLs in document order.
func Parse(body string) ([]string, error) {
	var urlset xmlURLSet
	if err := xml.Unmarshal([]byte(body), &urlset); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	urls := make([]string, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// ParseIndex parses a sitemap index XML file and returns the URLs of all
// child sitemaps listed within it.
func ParseIndex(body string) ([]string, error) {
	var index xmlSitemapIndex
	if err := xml.Unmarshal([]byte(body), &index); err != nil {
		return nil, fmt.Errorf("parse sitemap index: %w", err)
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, s := range index.Sitemaps {
		loc := strings.TrimSpace(s.Loc)
		if loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// IsIndex reports whether the XML document is a sitemap index rather than
// a plain urlset.
func IsIndex(body string) bool {
	var index xmlSitemapIndex
	return xml.Unmarshal([]byte(body), &index) == nil && len(index.Sitemaps) > 0
}

// FetchURLs fetches a sitemap and returns its article URLs in listed order.
// Sitemap index files are flattened: each child sitemap is fetched in turn
// and its URLs appended. A child sitemap that fails to fetch is skipped.
func FetchURLs(ctx context.Context, sitemapURL string, opts *fetch.Options) ([]string, error) {
	result, err := fetch.URL(ctx, sitemapURL, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap %s: %w", sitemapURL, err)
	}

	if !IsIndex(result.Body) {
		return Parse(result.Body)
	}

	children, err := ParseIndex(result.Body)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, child := range children {
		childResult, err := fetch.URL(ctx, child, opts)
		if err != nil {
			continue
		}
		childURLs, err := Parse(childResult.Body)
		if err != nil {
			continue
		}
		urls = append(urls, childURLs...)
	}
	return urls, nil
}
