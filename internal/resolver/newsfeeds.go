package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GNewsStrategy looks the URL up through the GNews search API when a direct
// scrape fails (paywalls, bot blocking).
type GNewsStrategy struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGNewsStrategy(apiKey string, timeoutSec int) *GNewsStrategy {
	if timeoutSec <= 0 {
		timeoutSec = 8
	}
	return &GNewsStrategy{
		apiKey:     apiKey,
		baseURL:    "https://gnews.io/api/v4/search",
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (s *GNewsStrategy) Name() string { return "gnews" }

func (s *GNewsStrategy) Resolve(ctx context.Context, articleURL string) (*Content, error) {
	params := url.Values{}
	params.Set("q", articleURL)
	params.Set("lang", "en")
	params.Set("max", "1")
	params.Set("token", s.apiKey)

	var parsed struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
		} `json:"articles"`
	}
	if err := getJSON(ctx, s.httpClient, s.baseURL, params, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Articles) == 0 {
		return nil, fmt.Errorf("no matching article")
	}

	art := parsed.Articles[0]
	text := joinParts(art.Title, art.Description, art.Content)
	if text == "" {
		return nil, fmt.Errorf("matching article had no content")
	}
	return &Content{Text: text, Title: art.Title}, nil
}

// NewsAPIStrategy is the last-resort lookup via the NewsAPI everything
// endpoint.
type NewsAPIStrategy struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewNewsAPIStrategy(apiKey string, timeoutSec int) *NewsAPIStrategy {
	if timeoutSec <= 0 {
		timeoutSec = 8
	}
	return &NewsAPIStrategy{
		apiKey:     apiKey,
		baseURL:    "https://newsapi.org/v2/everything",
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (s *NewsAPIStrategy) Name() string { return "newsapi" }

func (s *NewsAPIStrategy) Resolve(ctx context.Context, articleURL string) (*Content, error) {
	params := url.Values{}
	params.Set("q", articleURL)
	params.Set("apiKey", s.apiKey)
	params.Set("searchIn", "title,description,content")
	params.Set("pageSize", "1")

	var parsed struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
		} `json:"articles"`
	}
	if err := getJSON(ctx, s.httpClient, s.baseURL, params, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Articles) == 0 {
		return nil, fmt.Errorf("no matching article")
	}

	art := parsed.Articles[0]
	text := joinParts(art.Title, art.Description, art.Content)
	if text == "" {
		return nil, fmt.Errorf("matching article had no content")
	}
	return &Content{Text: text, Title: art.Title}, nil
}

func getJSON(ctx context.Context, client *http.Client, baseURL string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", baseURL, params.Encode()), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
