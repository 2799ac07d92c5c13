package crawling

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/jonathan/interlink/internal/types"
)

// tagcloudSelector matches the taxonomy tag cloud the theme renders in the
// post footer.
const tagcloudSelector = "div.vlt-single-post-tags__tagcloud a"

// maxSummaryExcerptLen caps the fallback excerpt taken from readability
// text content.
const maxSummaryExcerptLen = 300

// ExtractMetadata parses article HTML and extracts the metadata record.
// Field by field it is best effort: a missing tag yields an empty value,
// not an error. Only unparseable HTML fails.
func ExtractMetadata(html string, pageURL string) (*types.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{
			URL:     pageURL,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	metaDescription := extractMetaDescription(doc)

	excerpt := extractBuilderExcerpt(doc)
	if excerpt == "" {
		excerpt = extractSummaryExcerpt(html, pageURL)
	}
	if excerpt == "" {
		excerpt = metaDescription
	}

	return &types.Article{
		URL:             pageURL,
		Title:           extractTitle(doc),
		Excerpt:         excerpt,
		MetaDescription: metaDescription,
		Keywords:        extractKeywords(doc),
		Categories:      extractCategories(doc),
	}, nil
}

// extractTitle returns the <title> text, falling back to og:title.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// extractMetaDescription returns the description meta tag, falling back
// to og:description.
func extractMetaDescription(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	if content, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// extractKeywords returns the taxonomy tags from the post footer tag cloud.
func extractKeywords(doc *goquery.Document) []string {
	keywords := make([]string, 0)
	doc.Find(tagcloudSelector).Each(func(_ int, s *goquery.Selection) {
		if tag := strings.TrimSpace(s.Text()); tag != "" {
			keywords = append(keywords, tag)
		}
	})
	return keywords
}

// ldJSONItem is the subset of a JSON-LD block the extractor cares about.
type ldJSONItem struct {
	Type           string          `json:"@type"`
	ArticleSection json.RawMessage `json:"articleSection"`
}

// extractCategories collects articleSection values from JSON-LD blocks of
// @type Article, deduplicated in first-seen order.
func extractCategories(doc *goquery.Document) []string {
	categories := make([]string, 0)
	seen := make(map[string]bool)

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		for _, item := range parseLDItems(raw) {
			if item.Type != "Article" || len(item.ArticleSection) == 0 {
				continue
			}
			for _, cat := range parseArticleSection(item.ArticleSection) {
				if cat != "" && !seen[cat] {
					seen[cat] = true
					categories = append(categories, cat)
				}
			}
		}
	})

	return categories
}

// parseLDItems decodes a JSON-LD block that may be a single object or an
// array of objects. Malformed blocks are skipped.
func parseLDItems(raw string) []ldJSONItem {
	var single ldJSONItem
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single.Type != "" {
		return []ldJSONItem{single}
	}

	var list []ldJSONItem
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	return nil
}

// parseArticleSection handles articleSection being either a string or a
// list of strings.
func parseArticleSection(raw json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{strings.TrimSpace(one)}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		for i := range many {
			many[i] = strings.TrimSpace(many[i])
		}
		return many
	}
	return nil
}

// extractBuilderExcerpt scans inline scripts for the page builder's post
// data blob and pulls the excerpt field out of it.
func extractBuilderExcerpt(doc *goquery.Document) string {
	var excerpt string

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		if !strings.Contains(content, `"post":`) || !strings.Contains(content, `"excerpt":`) {
			return true
		}

		snippet := content[strings.Index(content, `"post":`):]
		marker := `"excerpt":"`
		start := strings.Index(snippet, marker)
		if start == -1 {
			return true
		}
		start += len(marker)

		end := indexUnescapedQuote(snippet[start:])
		if end == -1 {
			return true
		}

		excerpt = decodeJSONString(snippet[start : start+end])
		return false
	})

	return excerpt
}

// indexUnescapedQuote returns the index of the first double quote not
// preceded by a backslash, or -1.
func indexUnescapedQuote(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// decodeJSONString interprets escape sequences in a raw JSON string value.
// On malformed input the raw text is returned as-is.
func decodeJSONString(raw string) string {
	var decoded string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &decoded); err != nil {
		return raw
	}
	return decoded
}

// extractSummaryExcerpt runs generic readability extraction and returns a
// short summary, used when the page builder blob is absent.
func extractSummaryExcerpt(html string, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return ""
	}

	if excerpt := strings.TrimSpace(article.Excerpt); excerpt != "" {
		return excerpt
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	runes := []rune(text)
	if len(runes) > maxSummaryExcerptLen {
		return string(runes[:maxSummaryExcerptLen])
	}
	return text
}
