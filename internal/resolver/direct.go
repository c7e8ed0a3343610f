package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxBodyChars     = 1000
	maxParagraphs    = 5
	minParagraphLen  = 30
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DirectStrategy fetches the page itself and extracts title, description and
// the leading article paragraphs.
type DirectStrategy struct {
	httpClient *http.Client
}

func NewDirectStrategy(timeoutSec int) *DirectStrategy {
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &DirectStrategy{
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (s *DirectStrategy) Name() string { return "direct" }

func (s *DirectStrategy) Resolve(ctx context.Context, articleURL string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := extractTitle(doc)
	description := extractDescription(doc)
	if description == title {
		description = ""
	}
	body := extractArticleBody(doc)

	text := joinParts(title, description, body)
	if text == "" {
		return nil, fmt.Errorf("no usable content on page")
	}

	return &Content{Text: text, Title: title}, nil
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(meta)
	}
	return ""
}

// extractArticleBody takes the first few substantial paragraphs inside
// <article>, capped to keep the analyzable blob small.
func extractArticleBody(doc *goquery.Document) string {
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return ""
	}

	article.Find("script, style").Remove()

	var paragraphs []string
	article.Find("p").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxParagraphs {
			return false
		}
		text := strings.TrimSpace(sel.Text())
		if len(text) > minParagraphLen {
			paragraphs = append(paragraphs, text)
		}
		return true
	})

	body := strings.Join(paragraphs, " ")
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars] + "..."
	}
	return body
}
