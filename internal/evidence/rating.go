package evidence

import "strings"

// Bucket is the normalized classification of a free-text fact-check rating.
type Bucket string

const (
	BucketTrue    Bucket = "true"
	BucketFalse   Bucket = "false"
	BucketMixed   Bucket = "mixed"
	BucketUnknown Bucket = "unknown"
)

var (
	falseKeywords = []string{"false", "mostly false", "pants on fire", "scam", "fake", "incorrect", "not true", "debunked"}
	trueKeywords  = []string{"true", "mostly true", "correct attribution", "accurate", "correct", "verified"}
	mixedKeywords = []string{"half true", "mixture", "partly true", "needs context", "misleading", "unproven", "unsupported"}
)

// NormalizeRating maps a publisher's textual rating onto a bucket by keyword
// membership. False keywords take precedence so ratings like "not true" are
// never misread as true.
func NormalizeRating(text string) Bucket {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, w := range falseKeywords {
		if strings.Contains(t, w) {
			return BucketFalse
		}
	}
	for _, w := range trueKeywords {
		if strings.Contains(t, w) {
			return BucketTrue
		}
	}
	for _, w := range mixedKeywords {
		if strings.Contains(t, w) {
			return BucketMixed
		}
	}
	return BucketUnknown
}
