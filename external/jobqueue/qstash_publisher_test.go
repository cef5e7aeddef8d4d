package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fannax/internal/platform/resilience"
	"github.com/riskibarqy/fannax/internal/usecase"
)

func TestQStashPublisher_EnqueueSetsUpstashHeaders(t *testing.T) {
	t.Parallel()

	var gotPath, gotBody string
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://fannax.example.com/",
		Retries:          3,
		InternalJobToken: "job-secret",
		HTTPClient:       srv.Client(),
	}, nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	err = publisher.Enqueue(context.Background(), "v1/internal/jobs/settle", map[string]any{"reason": "finished"}, 1500*time.Millisecond, "settle-sync-20260301T080000Z")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if gotPath != "/v2/publish/https://fannax.example.com/v1/internal/jobs/settle" {
		t.Fatalf("unexpected publish path: %s", gotPath)
	}
	checks := map[string]string{
		"Authorization":                        "Bearer qstash-token",
		"Upstash-Retries":                      "3",
		"Upstash-Delay":                        "2s",
		"Upstash-Deduplication-Id":             "settle-sync-20260301T080000Z",
		"Upstash-Forward-X-Internal-Job-Token": "job-secret",
	}
	for header, want := range checks {
		if got := gotHeader.Get(header); got != want {
			t.Fatalf("header %s: got %q want %q", header, got, want)
		}
	}
	if !strings.Contains(gotBody, `"reason":"finished"`) {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestQStashPublisher_TransientFailuresOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        srv.URL,
		Token:          "t",
		TargetBaseURL:  "https://fannax.example.com",
		HTTPClient:     srv.Client(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute},
	}, nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	if err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/settle", nil, 0, ""); err == nil {
		t.Fatalf("expected failure")
	}
	if err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/settle", nil, 0, ""); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
}

func TestNewQStashPublisher_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "ftp://x", Token: "t", TargetBaseURL: "https://a"}, nil); err == nil {
		t.Fatalf("expected scheme error")
	}
	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io", Token: "t", TargetBaseURL: ""}, nil); err == nil {
		t.Fatalf("expected target error")
	}
	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io", TargetBaseURL: "https://a"}, nil); err == nil {
		t.Fatalf("expected token error")
	}
}

func TestNormalizeDelay(t *testing.T) {
	t.Parallel()

	if got := normalizeDelay(0); got != "0s" {
		t.Fatalf("got %s", got)
	}
	if got := normalizeDelay(90 * time.Second); got != "90s" {
		t.Fatalf("got %s", got)
	}
}
