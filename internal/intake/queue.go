package intake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/metrics"
	"github.com/veriscan/backend/pkg/logger"
	"github.com/veriscan/backend/pkg/utils"
)

var ErrInvalidInput = errors.New("content is empty")

// Job is one unit of verification work. It is created at intake, owned by the
// queue until dequeued, then owned exclusively by the worker.
type Job struct {
	Content     string
	ContentHash string
	SourceURL   string
	EnqueuedAt  time.Time
}

type Status string

const (
	StatusQueued   Status = "queued"
	StatusRequeued Status = "requeued"
)

type Receipt struct {
	Status      Status
	ContentHash string
}

// Queue is the dedup intake queue: a mutex-guarded FIFO plus the set of every
// content hash ever admitted. Duplicates are requeued rather than rejected so
// a verdict can be refreshed against current upstream signals.
type Queue struct {
	mu   sync.Mutex
	jobs []Job
	seen map[string]struct{}
	wake chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		seen: make(map[string]struct{}),
		wake: make(chan struct{}, 1),
	}
}

// Submit hashes the content, records it in the seen set and enqueues a job.
// Safe for concurrent callers.
func (q *Queue) Submit(content, sourceURL string) (Receipt, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Receipt{}, ErrInvalidInput
	}

	hash := utils.HashContent(content)

	q.mu.Lock()
	status := StatusQueued
	if _, ok := q.seen[hash]; ok {
		status = StatusRequeued
	} else {
		q.seen[hash] = struct{}{}
	}
	q.jobs = append(q.jobs, Job{
		Content:     content,
		ContentHash: hash,
		SourceURL:   sourceURL,
		EnqueuedAt:  time.Now(),
	})
	depth := len(q.jobs)
	q.mu.Unlock()

	q.signal()
	metrics.QueueDepth.Set(float64(depth))

	logger.Info("Job admitted",
		zap.String("content_hash", hash),
		zap.String("status", string(status)),
		zap.Int("depth", depth),
	)

	return Receipt{Status: status, ContentHash: hash}, nil
}

// Next blocks until a job is available or the context is cancelled. FIFO
// order; single consumer.
func (q *Queue) Next(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			job := q.jobs[0]
			q.jobs = q.jobs[1:]
			depth := len(q.jobs)
			q.mu.Unlock()
			metrics.QueueDepth.Set(float64(depth))
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Job{}, ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// MarkSeen preloads hashes from the result store at startup so persisted
// records count as seen.
func (q *Queue) MarkSeen(hashes []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, h := range hashes {
		q.seen[h] = struct{}{}
	}
}

// Forget drops one hash from the seen set, e.g. after its record is deleted.
func (q *Queue) Forget(hash string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.seen, hash)
}

// Reset clears the seen set; pending jobs are left untouched.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seen = make(map[string]struct{})
}

func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) SeenCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.seen)
}
