// Package resolver turns raw submissions into analyzable text. URLs are
// resolved through an ordered list of strategies: a direct scrape first, then
// news-search fallbacks. The first strategy to succeed wins.
package resolver

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/metrics"
	"github.com/veriscan/backend/pkg/logger"
	"github.com/veriscan/backend/pkg/utils"
)

var ErrNoContent = errors.New("could not extract content from the URL")

// Content is normalized analyzable text plus its provenance. Text joins
// title, description and body with " | " so downstream consumers can pick the
// title segment back out.
type Content struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Strategy is one way of obtaining article content for a URL.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, articleURL string) (*Content, error)
}

// ContentCache is the optional resolved-content cache boundary.
type ContentCache interface {
	GetContent(ctx context.Context, urlHash string, content interface{}) (bool, error)
	SetContent(ctx context.Context, urlHash string, content interface{}) error
}

type Resolver struct {
	strategies []Strategy
	cache      ContentCache
}

// NewResolver builds a resolver over the given strategies, tried in order.
// cache may be nil.
func NewResolver(cache ContentCache, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, cache: cache}
}

// ResolveURL fetches analyzable content for the URL, consulting the cache
// first and populating it on success.
func (r *Resolver) ResolveURL(ctx context.Context, articleURL string) (*Content, error) {
	urlHash := utils.HashContent(articleURL)

	if r.cache != nil {
		var cached Content
		hit, err := r.cache.GetContent(ctx, urlHash, &cached)
		if err != nil {
			logger.Warn("Content cache lookup failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	for _, s := range r.strategies {
		content, err := s.Resolve(ctx, articleURL)
		if err != nil {
			metrics.ResolverRequests.WithLabelValues(s.Name(), "miss").Inc()
			logger.Warn("Resolver strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("url", articleURL),
				zap.Error(err),
			)
			continue
		}

		metrics.ResolverRequests.WithLabelValues(s.Name(), "hit").Inc()
		logger.Info("Content resolved",
			zap.String("strategy", s.Name()),
			zap.String("url", articleURL),
			zap.Int("length", len(content.Text)),
		)

		if r.cache != nil {
			if err := r.cache.SetContent(ctx, urlHash, content); err != nil {
				logger.Warn("Content cache store failed", zap.Error(err))
			}
		}
		return content, nil
	}

	return nil, ErrNoContent
}

var urlRegex = regexp.MustCompile(`^(?i)(?:https?://)?(?:[\w-]+\.)+[a-z]{2,}(?::\d+)?(?:/\S*)?$`)

// LooksLikeURL reports whether a pasted string should be treated as a URL
// rather than claim text.
func LooksLikeURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2048 {
		return false
	}
	return urlRegex.MatchString(s)
}

// NormalizeURL prepends https:// when no scheme is present.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return u
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" {
		return "https://" + u
	}
	return u
}

// DomainOf extracts the host from a URL, minus any www. prefix. Empty when
// the URL is absent or unparseable.
func DomainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	domain := parsed.Hostname()
	return strings.TrimPrefix(domain, "www.")
}

func joinParts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}
