package checker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	consts "github.com/khanhnv2901/seca-sri/internal/shared/constants"
)

// VerifyJob is one integrity check to run.
type VerifyJob struct {
	URL       string
	Integrity string
}

// VerifyResult pairs a job with its outcome or failure.
type VerifyResult struct {
	Job      VerifyJob
	Outcome  *VerificationOutcome
	Err      error
	Duration time.Duration
}

// AuditFunc is called once per finished job, possibly from a worker goroutine.
type AuditFunc func(index int, result VerifyResult)

// Runner orchestrates integrity verification with bounded concurrency and
// a global rate limit. Results are always returned in job order.
type Runner struct {
	Verifier    *Verifier
	Concurrency int // Maximum number of concurrent fetches
	RateLimit   int // Requests per second (global)
}

// VerifyAll runs every job exactly once. A failing job never stops the others.
func (r *Runner) VerifyAll(ctx context.Context, jobs []VerifyJob, auditFn AuditFunc) []VerifyResult {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = consts.DefaultConcurrency
	}
	rateLimit := r.RateLimit
	if rateLimit <= 0 {
		rateLimit = consts.DefaultRateLimit
	}
	limiter := rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	verifier := r.Verifier
	if verifier == nil {
		verifier = NewVerifier(0, "")
	}

	results := make([]VerifyResult, len(jobs))
	var mu sync.Mutex

	// Errors are recorded per result; the group itself never fails so one
	// bad resource cannot cancel the rest.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			start := time.Now()

			var res VerifyResult
			if err := limiter.Wait(ctx); err != nil {
				res = VerifyResult{Job: job, Err: &NetworkError{URL: job.URL, Err: err}}
			} else {
				res = verifyOne(ctx, verifier, job)
			}
			res.Duration = time.Since(start)

			mu.Lock()
			results[i] = res
			mu.Unlock()

			if auditFn != nil {
				auditFn(i, res)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// verifyOne runs a single job. A panic in the verifier becomes that job's
// error so the remaining jobs still run.
func verifyOne(ctx context.Context, verifier *Verifier, job VerifyJob) (res VerifyResult) {
	defer func() {
		if r := recover(); r != nil {
			res = VerifyResult{Job: job, Err: fmt.Errorf("verify %s: unhandled error: %v", job.URL, r)}
		}
	}()
	outcome, err := verifier.Verify(ctx, job.URL, job.Integrity)
	return VerifyResult{Job: job, Outcome: outcome, Err: err}
}
