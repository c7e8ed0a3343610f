// Package evidence turns raw fact-check search results into a single rating
// signal: claims are filtered by token-overlap similarity to the query, their
// reviews normalized into buckets and tallied.
package evidence

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/veriscan/backend/pkg/logger"
)

// Evidence-source failure taxonomy. The worker treats any of these as "no
// signal" for fusion but logs the distinction.
var (
	ErrQuotaExceeded = errors.New("fact-check source quota exceeded")
	ErrUpstream      = errors.New("fact-check source request failed")
	ErrTimeout       = errors.New("fact-check source timed out")
	ErrConnection    = errors.New("fact-check source connection failed")
)

// Claim is one candidate claim returned by the fact-check source.
type Claim struct {
	Text    string
	Reviews []Review
}

// Review is one publisher's rating of a claim.
type Review struct {
	Rating    string
	Publisher string
}

// Searcher is the fact-check source boundary.
type Searcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]Claim, error)
}

// Result is the aggregated rating signal. Rating and Publisher come from the
// first surviving review as a representative sample.
type Result struct {
	Found     bool
	Rating    string
	Publisher string
}

// titleSeparator joins title, description and body in resolver output. For
// URL-derived content only the leading title segment is searched, since
// titles match fact-check corpora far better than a full article blob.
const titleSeparator = "|"

const (
	thresholdPlain      = 0.65
	thresholdURLDerived = 0.75
)

type Aggregator struct {
	searcher Searcher
	pageSize int
}

func NewAggregator(searcher Searcher, pageSize int) *Aggregator {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Aggregator{searcher: searcher, pageSize: pageSize}
}

// Aggregate queries the fact-check source and reduces the matching reviews to
// one Result. Ties and mixed/unknown-only signals are reported as not found,
// never guessed.
func (a *Aggregator) Aggregate(ctx context.Context, queryText string, urlDerived bool) (Result, error) {
	searchQuery := queryText
	threshold := thresholdPlain
	if urlDerived {
		threshold = thresholdURLDerived
		if idx := strings.Index(queryText, titleSeparator); idx >= 0 {
			searchQuery = strings.TrimSpace(queryText[:idx])
			logger.Debug("Using title segment for fact-check search", zap.String("query", searchQuery))
		}
	}

	claims, err := a.searcher.Search(ctx, searchQuery, a.pageSize)
	if err != nil {
		return Result{}, err
	}

	notFound := Result{Found: false, Rating: "Not Found", Publisher: "N/A"}

	var surviving []Review
	for _, claim := range claims {
		if !similarEnough(searchQuery, claim.Text, threshold) {
			continue
		}
		for _, review := range claim.Reviews {
			if strings.TrimSpace(review.Rating) == "" {
				continue
			}
			surviving = append(surviving, review)
		}
	}
	if len(surviving) == 0 {
		return notFound, nil
	}

	trueCount := 0
	falseCount := 0
	for _, review := range surviving {
		switch NormalizeRating(review.Rating) {
		case BucketTrue:
			trueCount++
		case BucketFalse:
			falseCount++
		}
	}

	first := surviving[0]
	logger.Debug("Fact-check reviews tallied",
		zap.Int("surviving", len(surviving)),
		zap.Int("true", trueCount),
		zap.Int("false", falseCount),
	)

	if falseCount > trueCount && falseCount >= 1 {
		rating := first.Rating
		if NormalizeRating(rating) != BucketFalse {
			rating = "False"
		}
		return Result{Found: true, Rating: rating, Publisher: first.Publisher}, nil
	}
	if trueCount > falseCount && trueCount >= 1 {
		rating := first.Rating
		if NormalizeRating(rating) != BucketTrue {
			rating = "True"
		}
		return Result{Found: true, Rating: rating, Publisher: first.Publisher}, nil
	}

	notFound.Publisher = first.Publisher
	return notFound, nil
}
