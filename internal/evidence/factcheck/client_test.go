package factcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/veriscan/backend/internal/evidence"
	"github.com/veriscan/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSearchMapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") != "earth is flat" {
			t.Errorf("query param = %q", q.Get("query"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("key param = %q", q.Get("key"))
		}
		if q.Get("languageCode") != "en-US" {
			t.Errorf("languageCode param = %q", q.Get("languageCode"))
		}
		if q.Get("pageSize") != "5" {
			t.Errorf("pageSize param = %q", q.Get("pageSize"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"claims": [
				{
					"text": "The earth is flat",
					"claimReview": [
						{"textualRating": "False", "publisher": {"name": "Snopes"}},
						{"textualRating": "Pants on Fire", "publisher": {}}
					]
				},
				{"text": "An unreviewed claim"}
			]
		}`))
	}))
	defer srv.Close()

	claims, err := NewClient("test-key", srv.URL, 5).Search(context.Background(), "earth is flat", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(claims) != 2 {
		t.Fatalf("got %d claims, want 2", len(claims))
	}

	first := claims[0]
	if first.Text != "The earth is flat" {
		t.Errorf("claim text = %q", first.Text)
	}
	if len(first.Reviews) != 2 {
		t.Fatalf("got %d reviews, want 2", len(first.Reviews))
	}
	if first.Reviews[0].Rating != "False" || first.Reviews[0].Publisher != "Snopes" {
		t.Errorf("first review = %+v", first.Reviews[0])
	}
	if first.Reviews[1].Publisher != "N/A" {
		t.Errorf("missing publisher name should default to N/A, got %q", first.Reviews[1].Publisher)
	}
	if len(claims[1].Reviews) != 0 {
		t.Errorf("unreviewed claim should carry no reviews, got %d", len(claims[1].Reviews))
	}
}

func TestSearchEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	claims, err := NewClient("k", srv.URL, 5).Search(context.Background(), "anything", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(claims) != 0 {
		t.Errorf("got %d claims, want 0", len(claims))
	}
}

func TestSearchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient("k", srv.URL, 5).Search(context.Background(), "anything", 10)
	if !errors.Is(err, evidence.ErrQuotaExceeded) {
		t.Errorf("got %v, want ErrQuotaExceeded", err)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient("k", srv.URL, 5).Search(context.Background(), "anything", 10)
	if !errors.Is(err, evidence.ErrUpstream) {
		t.Errorf("got %v, want ErrUpstream", err)
	}
}

func TestSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	_, err := NewClient("k", srv.URL, 5).Search(context.Background(), "anything", 10)
	if !errors.Is(err, evidence.ErrUpstream) {
		t.Errorf("got %v, want ErrUpstream", err)
	}
}

func TestSearchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient("k", srv.URL, 5).Search(context.Background(), "anything", 10)
	if !errors.Is(err, evidence.ErrConnection) {
		t.Errorf("got %v, want ErrConnection", err)
	}
}

func TestSearchContextTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient("k", srv.URL, 5).Search(ctx, "anything", 10)
	if !errors.Is(err, evidence.ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout", err)
	}
}
