package intake

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/veriscan/backend/pkg/logger"
	"github.com/veriscan/backend/pkg/utils"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSubmitRejectsEmptyContent(t *testing.T) {
	q := NewQueue()

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := q.Submit(content, ""); err != ErrInvalidInput {
			t.Errorf("Submit(%q): got err %v, want ErrInvalidInput", content, err)
		}
	}
	if q.Depth() != 0 {
		t.Errorf("rejected submissions should not enqueue, depth = %d", q.Depth())
	}
	if q.SeenCount() != 0 {
		t.Errorf("rejected submissions should not touch the seen set, count = %d", q.SeenCount())
	}
}

func TestSubmitFirstThenDuplicate(t *testing.T) {
	q := NewQueue()

	r1, err := q.Submit("the earth is flat", "")
	if err != nil {
		t.Fatal(err)
	}
	if r1.Status != StatusQueued {
		t.Errorf("first submission: got status %s, want %s", r1.Status, StatusQueued)
	}
	if r1.ContentHash != utils.HashContent("the earth is flat") {
		t.Error("receipt hash does not match content hash")
	}

	r2, err := q.Submit("the earth is flat", "")
	if err != nil {
		t.Fatal(err)
	}
	if r2.Status != StatusRequeued {
		t.Errorf("duplicate submission: got status %s, want %s", r2.Status, StatusRequeued)
	}
	if r2.ContentHash != r1.ContentHash {
		t.Error("duplicate should hash identically")
	}

	// Both submissions enqueue; the seen set grows only once.
	if q.Depth() != 2 {
		t.Errorf("depth = %d, want 2", q.Depth())
	}
	if q.SeenCount() != 1 {
		t.Errorf("seen count = %d, want 1", q.SeenCount())
	}
}

func TestSubmitTrimsBeforeHashing(t *testing.T) {
	q := NewQueue()

	r1, _ := q.Submit("some claim", "")
	r2, _ := q.Submit("  some claim  \n", "")
	if r2.Status != StatusRequeued {
		t.Error("whitespace-padded duplicate should be recognized")
	}
	if r1.ContentHash != r2.ContentHash {
		t.Error("trimmed content should hash identically")
	}
}

func TestNextFIFO(t *testing.T) {
	q := NewQueue()
	q.Submit("first", "")
	q.Submit("second", "")
	q.Submit("third", "")

	ctx := context.Background()
	for _, want := range []string{"first", "second", "third"} {
		job, err := q.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if job.Content != want {
			t.Errorf("got %q, want %q", job.Content, want)
		}
	}
	if q.Depth() != 0 {
		t.Errorf("depth after draining = %d, want 0", q.Depth())
	}
}

func TestNextBlocksUntilSubmit(t *testing.T) {
	q := NewQueue()

	done := make(chan Job, 1)
	go func() {
		job, err := q.Next(context.Background())
		if err != nil {
			return
		}
		done <- job
	}()

	select {
	case <-done:
		t.Fatal("Next returned before anything was submitted")
	case <-time.After(50 * time.Millisecond):
	}

	q.Submit("wake up", "")

	select {
	case job := <-done:
		if job.Content != "wake up" {
			t.Errorf("got %q", job.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake after Submit")
	}
}

func TestNextHonorsContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := q.Next(ctx)
		errc <- err
	}()

	cancel()
	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not return on cancel")
	}
}

func TestMarkSeenAndForget(t *testing.T) {
	q := NewQueue()
	h := utils.HashContent("restored claim")
	q.MarkSeen([]string{h})

	r, _ := q.Submit("restored claim", "")
	if r.Status != StatusRequeued {
		t.Error("preloaded hash should count as seen")
	}

	q.Forget(h)
	r, _ = q.Submit("restored claim", "")
	if r.Status != StatusQueued {
		t.Error("forgotten hash should be treated as new")
	}
}

func TestResetClearsSeenNotJobs(t *testing.T) {
	q := NewQueue()
	q.Submit("claim one", "")
	q.Submit("claim two", "")

	q.Reset()

	if q.SeenCount() != 0 {
		t.Errorf("seen count after reset = %d, want 0", q.SeenCount())
	}
	if q.Depth() != 2 {
		t.Errorf("reset should leave pending jobs, depth = %d", q.Depth())
	}
}

func TestSubmitConcurrent(t *testing.T) {
	q := NewQueue()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Submit("same claim under contention", "")
		}()
	}
	wg.Wait()

	if q.Depth() != 20 {
		t.Errorf("depth = %d, want 20", q.Depth())
	}
	if q.SeenCount() != 1 {
		t.Errorf("seen count = %d, want 1", q.SeenCount())
	}
}
