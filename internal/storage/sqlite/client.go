package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/storage/models"
	"github.com/veriscan/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_results (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		query_text TEXT NOT NULL,
		content_hash TEXT NOT NULL UNIQUE,
		fact_check_found INTEGER NOT NULL DEFAULT 0,
		rating TEXT,
		publisher TEXT,
		integrity_hash TEXT,
		original_url TEXT,
		domain TEXT,
		ai_flag INTEGER,
		ai_confidence INTEGER,
		ai_reasoning TEXT,
		final_verdict TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON analysis_results(timestamp);
	CREATE INDEX IF NOT EXISTS idx_results_verdict ON analysis_results(final_verdict);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// UpsertRecord inserts a new analysis record, or refreshes every mutable
// field in place when a row for the same content hash already exists.
func (c *Client) UpsertRecord(rec *models.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_results (id, timestamp, query_text, content_hash, fact_check_found,
			rating, publisher, integrity_hash, original_url, domain,
			ai_flag, ai_confidence, ai_reasoning, final_verdict)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			timestamp = excluded.timestamp,
			fact_check_found = excluded.fact_check_found,
			rating = excluded.rating,
			publisher = excluded.publisher,
			integrity_hash = excluded.integrity_hash,
			original_url = excluded.original_url,
			domain = excluded.domain,
			ai_flag = excluded.ai_flag,
			ai_confidence = excluded.ai_confidence,
			ai_reasoning = excluded.ai_reasoning,
			final_verdict = excluded.final_verdict
	`

	found := 0
	if rec.FactCheckFound {
		found = 1
	}

	var aiFlag interface{}
	if rec.AIFlag != nil {
		if *rec.AIFlag {
			aiFlag = 1
		} else {
			aiFlag = 0
		}
	}

	var aiConfidence interface{}
	if rec.AIConfidence != nil {
		aiConfidence = *rec.AIConfidence
	}

	_, err := c.db.Exec(
		query,
		rec.ID,
		rec.Timestamp.Unix(),
		rec.QueryText,
		rec.ContentHash,
		found,
		rec.Rating,
		rec.Publisher,
		rec.IntegrityHash,
		rec.OriginalURL,
		rec.Domain,
		aiFlag,
		aiConfidence,
		rec.AIReasoning,
		rec.FinalVerdict,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert analysis record: %w", err)
	}

	logger.Debug("Analysis record upserted",
		zap.String("content_hash", rec.ContentHash),
		zap.String("verdict", rec.FinalVerdict),
	)
	return nil
}

func (c *Client) GetHistory() ([]models.AnalysisRecord, error) {
	query := `
		SELECT id, timestamp, query_text, content_hash, fact_check_found, rating, publisher,
			integrity_hash, original_url, domain, ai_flag, ai_confidence, ai_reasoning, final_verdict
		FROM analysis_results
		ORDER BY timestamp DESC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

func (c *Client) GetLatest() (*models.AnalysisRecord, error) {
	query := `
		SELECT id, timestamp, query_text, content_hash, fact_check_found, rating, publisher,
			integrity_hash, original_url, domain, ai_flag, ai_confidence, ai_reasoning, final_verdict
		FROM analysis_results
		ORDER BY timestamp DESC
		LIMIT 1
	`

	row := c.db.QueryRow(query)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) GetStats() (*models.StatsSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN final_verdict = 'VERIFIED_TRUE' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN final_verdict = 'FLAGGED_FALSE' THEN 1 ELSE 0 END), 0)
		FROM analysis_results
	`

	var stats models.StatsSummary
	err := c.db.QueryRow(query).Scan(&stats.TotalAnalyzed, &stats.VerifiedTrue, &stats.FlaggedFalse)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}

// DeleteRecord removes one record by row ID and returns its content hash so
// the caller can unmark it in the dedup set.
func (c *Client) DeleteRecord(id string) (string, error) {
	var contentHash string
	err := c.db.QueryRow("SELECT content_hash FROM analysis_results WHERE id = ?", id).Scan(&contentHash)
	if err == sql.ErrNoRows {
		return "", sql.ErrNoRows
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up record: %w", err)
	}

	_, err = c.db.Exec("DELETE FROM analysis_results WHERE id = ?", id)
	if err != nil {
		return "", fmt.Errorf("failed to delete record: %w", err)
	}

	logger.Info("Analysis record deleted", zap.String("id", id), zap.String("content_hash", contentHash))
	return contentHash, nil
}

func (c *Client) ClearHistory() error {
	_, err := c.db.Exec("DELETE FROM analysis_results")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	logger.Info("Analysis history cleared")
	return nil
}

// LoadContentHashes returns every persisted content hash, used to rebuild the
// dedup set at startup.
func (c *Client) LoadContentHashes() ([]string, error) {
	rows, err := c.db.Query("SELECT content_hash FROM analysis_results")
	if err != nil {
		return nil, fmt.Errorf("failed to load content hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		hashes = append(hashes, h)
	}

	return hashes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.AnalysisRecord, error) {
	var rec models.AnalysisRecord
	var timestamp int64
	var found int
	var rating, publisher, integrityHash, originalURL, domain, aiReasoning, finalVerdict sql.NullString
	var aiFlag, aiConfidence sql.NullInt64

	err := row.Scan(
		&rec.ID,
		&timestamp,
		&rec.QueryText,
		&rec.ContentHash,
		&found,
		&rating,
		&publisher,
		&integrityHash,
		&originalURL,
		&domain,
		&aiFlag,
		&aiConfidence,
		&aiReasoning,
		&finalVerdict,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	rec.Timestamp = time.Unix(timestamp, 0).UTC()
	rec.FactCheckFound = found != 0
	rec.Rating = rating.String
	rec.Publisher = publisher.String
	rec.IntegrityHash = integrityHash.String
	rec.OriginalURL = originalURL.String
	rec.Domain = domain.String
	rec.AIReasoning = aiReasoning.String
	rec.FinalVerdict = finalVerdict.String

	if aiFlag.Valid {
		flag := aiFlag.Int64 != 0
		rec.AIFlag = &flag
	}
	if aiConfidence.Valid {
		conf := int(aiConfidence.Int64)
		rec.AIConfidence = &conf
	}

	return &rec, nil
}
