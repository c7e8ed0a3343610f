// Package verdict fuses the human fact-check signal, the AI credibility
// judgment and domain trust into one final verdict.
package verdict

import (
	"strings"

	"github.com/veriscan/backend/internal/evidence"
)

type Verdict string

const (
	VerifiedTrue Verdict = "VERIFIED_TRUE"
	FlaggedFalse Verdict = "FLAGGED_FALSE"
	Inconclusive Verdict = "INCONCLUSIVE"
)

// Reputable outlets. AI alone may never flag these as false; the bias only
// ever pushes toward TRUE or neutral.
var trustedDomains = []string{
	"indianexpress.com", "bbc.com", "nytimes.com", "cnn.com", "reuters.com", "apnews.com",
	"theguardian.com", "washingtonpost.com", "wsj.com", "aljazeera.com", "npr.org",
	"latimes.com", "hindustantimes.com", "thehindu.com", "timesofindia.indiatimes.com",
	"financialexpress.com", "business-standard.com",
}

// IsTrustedDomain does a case-insensitive suffix match against the allow-list.
// The caller is expected to have stripped any www. prefix.
func IsTrustedDomain(domain string) bool {
	d := strings.ToLower(domain)
	if d == "" {
		return false
	}
	for _, td := range trustedDomains {
		if strings.HasSuffix(d, td) {
			return true
		}
	}
	return false
}

// AI confidence gates. Flagging false requires more confidence than clearing
// as true, to bias away from false accusations.
const (
	aiFlagFalseConfidence  = 85
	aiVerifyTrueConfidence = 80
	trustedCorroboration   = 60
)

// Fuse is total and deterministic. A decisive human rating short-circuits the
// AI signal entirely; absent AI fields are a distinct no-signal state, never
// false or zero.
func Fuse(fcBucket evidence.Bucket, aiFlag *bool, aiConfidence *int, domain string) (Verdict, string) {
	switch fcBucket {
	case evidence.BucketTrue:
		return VerifiedTrue, "Human fact-check indicates it is true."
	case evidence.BucketFalse:
		return FlaggedFalse, "Human fact-check indicates it is false."
	}

	if aiFlag != nil && aiConfidence != nil {
		conf := *aiConfidence
		if IsTrustedDomain(domain) {
			if !*aiFlag && conf >= trustedCorroboration {
				return VerifiedTrue, "Trusted source and AI suggests credibility."
			}
			return Inconclusive, "Trusted source with no corroborating fact-check."
		}
		if *aiFlag && conf >= aiFlagFalseConfidence {
			return FlaggedFalse, "AI strongly suggests misinformation."
		}
		if !*aiFlag && conf >= aiVerifyTrueConfidence {
			return VerifiedTrue, "AI strongly suggests it is credible."
		}
	}

	return Inconclusive, "Insufficient agreement to decide."
}
