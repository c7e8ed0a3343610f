package models

import "time"

// AnalysisRecord is the persisted outcome of one verification pass.
// content_hash is the natural key: at most one row per hash, refreshed in
// place when the same content is re-analyzed.
type AnalysisRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	QueryText      string    `json:"query_text"`
	ContentHash    string    `json:"content_hash"`
	FactCheckFound bool      `json:"fact_check_found"`
	Rating         string    `json:"rating"`
	Publisher      string    `json:"publisher"`
	IntegrityHash  string    `json:"integrity_hash"`
	OriginalURL    string    `json:"original_url,omitempty"`
	Domain         string    `json:"domain,omitempty"`
	AIFlag         *bool     `json:"ai_flag"`
	AIConfidence   *int      `json:"ai_confidence"`
	AIReasoning    string    `json:"ai_reasoning,omitempty"`
	FinalVerdict   string    `json:"final_verdict"`
}

type StatsSummary struct {
	TotalAnalyzed int `json:"total_analyzed"`
	VerifiedTrue  int `json:"verified_true"`
	FlaggedFalse  int `json:"flagged_false"`
}
