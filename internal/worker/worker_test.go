package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/veriscan/backend/internal/ai"
	"github.com/veriscan/backend/internal/evidence"
	"github.com/veriscan/backend/internal/intake"
	"github.com/veriscan/backend/internal/integrity"
	"github.com/veriscan/backend/internal/storage/models"
	"github.com/veriscan/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeAggregator struct {
	res evidence.Result
	err error
}

func (f *fakeAggregator) Aggregate(_ context.Context, _ string, _ bool) (evidence.Result, error) {
	return f.res, f.err
}

type fakeJudge struct {
	judgment ai.Judgment
	err      error
}

func (f *fakeJudge) Judge(_ context.Context, _ string) (ai.Judgment, error) {
	return f.judgment, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]models.AnalysisRecord
	upserts int
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]models.AnalysisRecord)}
}

func (s *fakeStore) UpsertRecord(rec *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records[rec.ContentHash] = *rec
	s.upserts++
	return nil
}

func (s *fakeStore) get(hash string) (models.AnalysisRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[hash]
	return rec, ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

type fakePublisher struct {
	mu       sync.Mutex
	received []models.AnalysisRecord
}

func (p *fakePublisher) Publish(rec models.AnalysisRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.received = append(p.received, rec)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestProcessHumanFalseVerdict(t *testing.T) {
	q := intake.NewQueue()
	receipt, _ := q.Submit("The earth is flat and NASA hides it", "")
	job, _ := q.Next(context.Background())

	store := newFakeStore()
	pub := &fakePublisher{}
	w := New(q,
		&fakeAggregator{res: evidence.Result{Found: true, Rating: "False", Publisher: "Snopes"}},
		&fakeJudge{judgment: ai.Judgment{Flag: boolPtr(true), Confidence: intPtr(95), Reasoning: "contradicts satellite imagery"}},
		store, pub)

	w.process(context.Background(), job)

	rec, ok := store.get(receipt.ContentHash)
	if !ok {
		t.Fatal("record was not persisted")
	}
	if rec.FinalVerdict != "FLAGGED_FALSE" {
		t.Errorf("verdict = %s, want FLAGGED_FALSE", rec.FinalVerdict)
	}
	if !rec.FactCheckFound || rec.Rating != "False" || rec.Publisher != "Snopes" {
		t.Errorf("evidence fields = %+v", rec)
	}
	if rec.AIFlag == nil || !*rec.AIFlag || rec.AIConfidence == nil || *rec.AIConfidence != 95 {
		t.Errorf("AI fields = flag %v conf %v", rec.AIFlag, rec.AIConfidence)
	}
	if rec.ID == "" {
		t.Error("record should carry a generated id")
	}

	if len(pub.received) != 1 || pub.received[0].ContentHash != receipt.ContentHash {
		t.Errorf("publisher should receive the persisted record, got %d", len(pub.received))
	}
}

func TestProcessTrustedDomainVerdict(t *testing.T) {
	q := intake.NewQueue()
	url := "https://www.bbc.com/news/article-123"
	q.Submit("Parliament passes landmark climate bill | Full details inside", url)
	job, _ := q.Next(context.Background())

	store := newFakeStore()
	w := New(q,
		&fakeAggregator{res: evidence.Result{Found: false, Rating: "Not Found", Publisher: "N/A"}},
		&fakeJudge{judgment: ai.Judgment{Flag: boolPtr(false), Confidence: intPtr(70), Reasoning: "consistent with reporting"}},
		store, nil)

	w.process(context.Background(), job)

	rec, ok := store.get(job.ContentHash)
	if !ok {
		t.Fatal("record was not persisted")
	}
	if rec.FinalVerdict != "VERIFIED_TRUE" {
		t.Errorf("verdict = %s, want VERIFIED_TRUE for a trusted domain with AI corroboration", rec.FinalVerdict)
	}
	if rec.Domain != "bbc.com" {
		t.Errorf("domain = %q, want bbc.com", rec.Domain)
	}
	if rec.OriginalURL != url {
		t.Errorf("original url = %q", rec.OriginalURL)
	}
}

func TestProcessEvidenceFailure(t *testing.T) {
	q := intake.NewQueue()
	q.Submit("some claim that cannot be checked right now", "")
	job, _ := q.Next(context.Background())

	store := newFakeStore()
	w := New(q,
		&fakeAggregator{err: evidence.ErrQuotaExceeded},
		&fakeJudge{judgment: ai.Judgment{Flag: boolPtr(false), Confidence: intPtr(50)}},
		store, nil)

	w.process(context.Background(), job)

	rec, ok := store.get(job.ContentHash)
	if !ok {
		t.Fatal("evidence failure must still produce a persisted record")
	}
	if rec.Rating != "API Error" || rec.Publisher != "N/A" || rec.FactCheckFound {
		t.Errorf("failure record = %+v", rec)
	}
	if rec.FinalVerdict != "INCONCLUSIVE" {
		t.Errorf("verdict = %s, want INCONCLUSIVE", rec.FinalVerdict)
	}
}

func TestProcessJudgeFailure(t *testing.T) {
	q := intake.NewQueue()
	q.Submit("a claim the model cannot reach", "")
	job, _ := q.Next(context.Background())

	store := newFakeStore()
	w := New(q,
		&fakeAggregator{res: evidence.Result{Found: false, Rating: "Not Found", Publisher: "N/A"}},
		&fakeJudge{err: errors.New("model unavailable")},
		store, nil)

	w.process(context.Background(), job)

	rec, ok := store.get(job.ContentHash)
	if !ok {
		t.Fatal("judge failure must still produce a persisted record")
	}
	if rec.AIFlag != nil || rec.AIConfidence != nil {
		t.Error("failed judgment should leave AI fields absent, not zeroed")
	}
	if rec.FinalVerdict != "INCONCLUSIVE" {
		t.Errorf("verdict = %s, want INCONCLUSIVE", rec.FinalVerdict)
	}
}

func TestProcessIntegrityHash(t *testing.T) {
	q := intake.NewQueue()
	q.Submit("a fingerprinted claim", "")
	job, _ := q.Next(context.Background())

	store := newFakeStore()
	w := New(q,
		&fakeAggregator{res: evidence.Result{Found: true, Rating: "True", Publisher: "AP"}},
		&fakeJudge{judgment: ai.Judgment{Flag: boolPtr(false), Confidence: intPtr(90)}},
		store, nil)

	w.process(context.Background(), job)

	rec, _ := store.get(job.ContentHash)
	if len(rec.IntegrityHash) != 64 {
		t.Fatalf("integrity hash = %q, want 64 hex chars", rec.IntegrityHash)
	}

	fields := []string{
		rec.Timestamp.Format(time.RFC3339),
		rec.QueryText,
		rec.Rating,
		rec.Publisher,
		"90",
	}
	if !integrity.Verify(fields, rec.IntegrityHash) {
		t.Error("stored integrity hash does not verify against the record fields")
	}
}

func TestProcessReanalysisUpserts(t *testing.T) {
	q := intake.NewQueue()
	content := "a claim whose rating changed upstream"

	store := newFakeStore()
	agg := &fakeAggregator{res: evidence.Result{Found: false, Rating: "Not Found", Publisher: "N/A"}}
	w := New(q, agg, &fakeJudge{}, store, nil)

	q.Submit(content, "")
	job, _ := q.Next(context.Background())
	w.process(context.Background(), job)

	first, _ := store.get(job.ContentHash)
	if first.FinalVerdict != "INCONCLUSIVE" {
		t.Fatalf("first verdict = %s", first.FinalVerdict)
	}

	// The same content comes back after the fact-check corpus caught up.
	agg.res = evidence.Result{Found: true, Rating: "False", Publisher: "PolitiFact"}
	receipt, _ := q.Submit(content, "")
	if receipt.Status != intake.StatusRequeued {
		t.Fatalf("duplicate status = %s", receipt.Status)
	}
	job, _ = q.Next(context.Background())
	w.process(context.Background(), job)

	if len(store.records) != 1 {
		t.Fatalf("re-analysis must overwrite, got %d records", len(store.records))
	}
	second, _ := store.get(job.ContentHash)
	if second.FinalVerdict != "FLAGGED_FALSE" {
		t.Errorf("refreshed verdict = %s, want FLAGGED_FALSE", second.FinalVerdict)
	}
	if store.count() != 2 {
		t.Errorf("upserts = %d, want 2", store.count())
	}
}

func TestProcessStoreFailureSkipsPublish(t *testing.T) {
	q := intake.NewQueue()
	q.Submit("a claim the store rejects", "")
	job, _ := q.Next(context.Background())

	store := newFakeStore()
	store.err = errors.New("disk full")
	pub := &fakePublisher{}
	w := New(q,
		&fakeAggregator{res: evidence.Result{Found: false, Rating: "Not Found", Publisher: "N/A"}},
		&fakeJudge{}, store, pub)

	w.process(context.Background(), job)

	if len(pub.received) != 0 {
		t.Error("a record that failed to persist must not be published")
	}
}

func TestRunDrainsQueueAndStopsOnCancel(t *testing.T) {
	q := intake.NewQueue()
	store := newFakeStore()
	w := New(q,
		&fakeAggregator{res: evidence.Result{Found: false, Rating: "Not Found", Publisher: "N/A"}},
		&fakeJudge{}, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	q.Submit("first queued claim", "")
	q.Submit("second queued claim", "")

	deadline := time.After(2 * time.Second)
	for store.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("worker drained %d of 2 jobs", store.count())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
