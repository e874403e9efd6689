package checker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRunner_PreservesJobOrder(t *testing.T) {
	// earlier paths answer more slowly so completion order is reversed
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		time.Sleep(time.Duration(5-n) * 20 * time.Millisecond)
		_, _ = w.Write([]byte(testBody))
	}))
	defer server.Close()

	jobs := make([]VerifyJob, 5)
	for i := range jobs {
		jobs[i] = VerifyJob{
			URL:       server.URL + "/r.js?n=" + strconv.Itoa(i),
			Integrity: "sha384-" + sha384Digest(testBody),
		}
	}

	var mu sync.Mutex
	var seen []int
	runner := &Runner{Verifier: NewVerifier(5*time.Second, ""), Concurrency: 5, RateLimit: 100}
	results := runner.VerifyAll(context.Background(), jobs, func(index int, _ VerifyResult) {
		mu.Lock()
		seen = append(seen, index)
		mu.Unlock()
	})

	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, res := range results {
		if res.Job.URL != jobs[i].URL {
			t.Errorf("result %d belongs to %s, want %s", i, res.Job.URL, jobs[i].URL)
		}
		if res.Err != nil || res.Outcome == nil || !res.Outcome.Matches {
			t.Errorf("result %d: unexpected outcome %+v err=%v", i, res.Outcome, res.Err)
		}
	}
	if len(seen) != len(jobs) {
		t.Fatalf("expected audit callback per job, got %d", len(seen))
	}
}

func TestRunner_FailureDoesNotStopOthers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.js" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(testBody))
	}))
	defer server.Close()

	good := "sha384-" + sha384Digest(testBody)
	jobs := []VerifyJob{
		{URL: server.URL + "/broken.js", Integrity: good},
		{URL: server.URL + "/bad-format.js", Integrity: "md5-nope"},
		{URL: server.URL + "/ok.js", Integrity: good},
	}

	runner := &Runner{Verifier: NewVerifier(5*time.Second, "")}
	results := runner.VerifyAll(context.Background(), jobs, nil)

	var statusErr *HTTPStatusError
	if !errors.As(results[0].Err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected HTTP 500 error, got %v", results[0].Err)
	}
	var formatErr *InvalidIntegrityFormatError
	if !errors.As(results[1].Err, &formatErr) {
		t.Errorf("expected format error, got %v", results[1].Err)
	}
	if results[2].Err != nil || !results[2].Outcome.Matches {
		t.Errorf("expected last job to verify, got %+v err=%v", results[2].Outcome, results[2].Err)
	}
}

func TestRunner_NoJobs(t *testing.T) {
	runner := &Runner{}
	if results := runner.VerifyAll(context.Background(), nil, nil); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

type panickingTransport struct{}

func (panickingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("boom")
}

func TestRunner_PanicBecomesJobError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testBody))
	}))
	defer server.Close()

	verifier := NewVerifier(5*time.Second, "")
	verifier.Client = &http.Client{Transport: panickingTransport{}}
	good := "sha384-" + sha384Digest(testBody)
	jobs := []VerifyJob{
		{URL: server.URL + "/a.js", Integrity: good},
		{URL: server.URL + "/b.js", Integrity: good},
	}

	runner := &Runner{Verifier: verifier, Concurrency: 2, RateLimit: 100}
	results := runner.VerifyAll(context.Background(), jobs, nil)

	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, res := range results {
		if res.Err == nil || !strings.Contains(res.Err.Error(), "boom") {
			t.Errorf("job %d: expected recovered panic as error, got %v", i, res.Err)
		}
		if res.Job.URL != jobs[i].URL {
			t.Errorf("job %d: result belongs to %s", i, res.Job.URL)
		}
	}
}
