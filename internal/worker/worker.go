// Package worker drains the intake queue one job at a time: gather evidence,
// judge credibility, fuse a verdict, fingerprint the record and persist it.
package worker

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/ai"
	"github.com/veriscan/backend/internal/evidence"
	"github.com/veriscan/backend/internal/intake"
	"github.com/veriscan/backend/internal/integrity"
	"github.com/veriscan/backend/internal/metrics"
	"github.com/veriscan/backend/internal/resolver"
	"github.com/veriscan/backend/internal/storage/models"
	"github.com/veriscan/backend/internal/verdict"
	"github.com/veriscan/backend/pkg/logger"
)

type EvidenceAggregator interface {
	Aggregate(ctx context.Context, queryText string, urlDerived bool) (evidence.Result, error)
}

type CredibilityJudge interface {
	Judge(ctx context.Context, content string) (ai.Judgment, error)
}

type ResultStore interface {
	UpsertRecord(rec *models.AnalysisRecord) error
}

// Publisher receives completed records, e.g. for websocket fan-out.
type Publisher interface {
	Publish(rec models.AnalysisRecord)
}

type Worker struct {
	queue     *intake.Queue
	evidence  EvidenceAggregator
	judge     CredibilityJudge
	store     ResultStore
	publisher Publisher
}

// New wires the worker. publisher may be nil.
func New(queue *intake.Queue, agg EvidenceAggregator, judge CredibilityJudge, store ResultStore, publisher Publisher) *Worker {
	return &Worker{
		queue:     queue,
		evidence:  agg,
		judge:     judge,
		store:     store,
		publisher: publisher,
	}
}

// Run processes jobs serially in FIFO order until the context is cancelled.
// A failed job is logged and dropped; the loop never stops on one job.
func (w *Worker) Run(ctx context.Context) {
	logger.Info("Worker started")
	for {
		job, err := w.queue.Next(ctx)
		if err != nil {
			logger.Info("Worker stopped", zap.Error(err))
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job intake.Job) {
	logger.Info("Processing job",
		zap.String("content_hash", job.ContentHash),
		zap.String("source_url", job.SourceURL),
	)

	domain := resolver.DomainOf(job.SourceURL)
	urlDerived := job.SourceURL != "" && strings.Contains(job.Content, "|")

	start := time.Now()
	res, err := w.evidence.Aggregate(ctx, job.Content, urlDerived)
	metrics.EvidenceLatency.WithLabelValues("factcheck").Observe(time.Since(start).Seconds())
	if err != nil {
		reason := failureReason(err)
		metrics.EvidenceFailures.WithLabelValues("factcheck", reason).Inc()
		logger.Warn("Evidence aggregation produced no signal",
			zap.String("reason", reason),
			zap.Error(err),
		)
		res = evidence.Result{Found: false, Rating: "API Error", Publisher: "N/A"}
	}

	start = time.Now()
	judgment, err := w.judge.Judge(ctx, job.Content)
	metrics.EvidenceLatency.WithLabelValues("ai").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EvidenceFailures.WithLabelValues("ai", "error").Inc()
		logger.Warn("AI judgment unavailable", zap.Error(err))
		judgment = ai.Judgment{}
	}

	finalVerdict, reasoning := verdict.Fuse(evidence.NormalizeRating(res.Rating), judgment.Flag, judgment.Confidence, domain)

	timestamp := time.Now().UTC()
	confidence := "N/A"
	if judgment.Confidence != nil {
		confidence = strconv.Itoa(*judgment.Confidence)
	}
	digest := integrity.Digest([]string{
		timestamp.Format(time.RFC3339),
		job.Content,
		res.Rating,
		res.Publisher,
		confidence,
	})

	rec := models.AnalysisRecord{
		ID:             uuid.NewString(),
		Timestamp:      timestamp,
		QueryText:      job.Content,
		ContentHash:    job.ContentHash,
		FactCheckFound: res.Found,
		Rating:         res.Rating,
		Publisher:      res.Publisher,
		IntegrityHash:  digest,
		OriginalURL:    job.SourceURL,
		Domain:         domain,
		AIFlag:         judgment.Flag,
		AIConfidence:   judgment.Confidence,
		AIReasoning:    judgment.Reasoning,
		FinalVerdict:   string(finalVerdict),
	}

	if err := w.store.UpsertRecord(&rec); err != nil {
		metrics.JobsProcessed.WithLabelValues("dropped").Inc()
		logger.Error("Failed to persist analysis record",
			zap.String("content_hash", job.ContentHash),
			zap.Error(err),
		)
		return
	}

	metrics.JobsProcessed.WithLabelValues("persisted").Inc()
	metrics.VerdictTotal.WithLabelValues(string(finalVerdict)).Inc()

	if w.publisher != nil {
		w.publisher.Publish(rec)
	}

	logger.Info("Job completed",
		zap.String("content_hash", job.ContentHash),
		zap.String("verdict", string(finalVerdict)),
		zap.String("reasoning", reasoning),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, evidence.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, evidence.ErrTimeout):
		return "timeout"
	case errors.Is(err, evidence.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, evidence.ErrConnection):
		return "connection_error"
	default:
		return "unknown"
	}
}
