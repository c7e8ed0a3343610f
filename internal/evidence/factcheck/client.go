// Package factcheck is the HTTP client for the claim-review search API.
package factcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/evidence"
	"github.com/veriscan/backend/pkg/logger"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeoutSec int) *Client {
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

type searchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			TextualRating string `json:"textualRating"`
			Publisher     struct {
				Name string `json:"name"`
			} `json:"publisher"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search runs one claims:search call. Failures map onto the evidence error
// taxonomy and are never retried here.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]evidence.Claim, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	params.Set("languageCode", "en-US")
	params.Set("pageSize", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", evidence.ErrConnection, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", evidence.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", evidence.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		logger.Warn("Fact-check API rate limited", zap.String("query", query))
		return nil, evidence.ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("Fact-check API request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query),
		)
		return nil, fmt.Errorf("%w: status %d", evidence.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", evidence.ErrConnection, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", evidence.ErrUpstream, err)
	}

	claims := make([]evidence.Claim, 0, len(parsed.Claims))
	for _, c := range parsed.Claims {
		claim := evidence.Claim{Text: c.Text}
		for _, r := range c.ClaimReview {
			publisher := r.Publisher.Name
			if publisher == "" {
				publisher = "N/A"
			}
			claim.Reviews = append(claim.Reviews, evidence.Review{
				Rating:    r.TextualRating,
				Publisher: publisher,
			})
		}
		claims = append(claims, claim)
	}

	logger.Debug("Fact-check search completed",
		zap.String("query", query),
		zap.Int("claims", len(claims)),
	)

	return claims, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
