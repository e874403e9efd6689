package audit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/khanhnv2901/seca-sri/internal/checker"
	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
	sharederrors "github.com/khanhnv2901/seca-sri/internal/shared/errors"
)

// ProgressFunc is told how many verifications are about to run and returns
// a callback for each finished one plus a function called when all are done.
// The callback may be invoked concurrently.
type ProgressFunc func(total int) (onResult func(checker.VerifyResult), done func())

// Options wires the collaborators of a Service.
type Options struct {
	Policy   *checker.Policy
	Runner   *checker.Runner
	Logger   *zap.SugaredLogger
	Suggest  bool // compute integrity values for required resources that lack one
	Progress ProgressFunc

	// SuggestAlgorithm is the digest used for suggestions, sha384 when empty.
	SuggestAlgorithm checker.HashAlgorithm
}

// Service runs the extract, classify, verify and header audit pipeline.
type Service struct {
	policy      *checker.Policy
	runner      *checker.Runner
	logger      *zap.SugaredLogger
	suggest     bool
	suggestAlgo checker.HashAlgorithm
	progress    ProgressFunc
}

// NewService creates a new audit service
func NewService(opts Options) *Service {
	if opts.Policy == nil {
		opts.Policy = checker.NewPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Runner == nil {
		opts.Runner = &checker.Runner{}
	}
	if opts.SuggestAlgorithm == "" {
		opts.SuggestAlgorithm = checker.HashAlgorithmSHA384
	}
	if opts.Runner.Verifier == nil {
		opts.Runner.Verifier = checker.NewVerifier(0, "")
	}
	return &Service{
		policy:      opts.Policy,
		runner:      opts.Runner,
		logger:      opts.Logger,
		suggest:     opts.Suggest,
		suggestAlgo: opts.SuggestAlgorithm,
		progress:    opts.Progress,
	}
}

// Run audits the HTML document at path. A missing document fails with
// ErrInputMissing before any other work is done.
func (s *Service) Run(ctx context.Context, path string) (*audit.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", sharederrors.ErrInputMissing, path)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	s.logger.Debugw("document loaded", "path", path, "bytes", len(data))

	return s.Audit(ctx, path, string(data))
}

// Audit runs the pipeline over document text already in memory.
func (s *Service) Audit(ctx context.Context, name, document string) (*audit.Report, error) {
	report := audit.NewReport(name)

	resources, err := checker.ExtractResources(document)
	if err != nil {
		return nil, fmt.Errorf("failed to extract resources: %w", err)
	}
	s.logger.Infow("resources extracted", "document", name, "count", len(resources))

	findings := make([]audit.ResourceFinding, len(resources))
	var jobs []checker.VerifyJob
	var jobOwners []int
	for i, r := range resources {
		required, rule := s.policy.Classify(r)
		findings[i] = audit.ResourceFinding{Resource: r, RequiresIntegrity: required}
		if rule != nil {
			findings[i].ExemptedBy = rule.Name
			findings[i].ExemptionReason = rule.Reason
		}
		if r.HasIntegrity() {
			jobs = append(jobs, checker.VerifyJob{URL: r.URL, Integrity: r.Integrity})
			jobOwners = append(jobOwners, i)
		}
	}

	var onResult func(checker.VerifyResult)
	stopProgress := func() {}
	if s.progress != nil && len(jobs) > 0 {
		onResult, stopProgress = s.progress(len(jobs))
	}

	results := s.runner.VerifyAll(ctx, jobs, func(_ int, res checker.VerifyResult) {
		if onResult != nil {
			onResult(res)
		}
		if res.Err != nil {
			s.logger.Warnw("verification failed", "url", res.Job.URL, "error", res.Err, "duration", res.Duration)
			return
		}
		s.logger.Debugw("verification finished",
			"url", res.Job.URL,
			"algorithm", res.Outcome.Algorithm,
			"matches", res.Outcome.Matches,
			"duration", res.Duration,
		)
	})
	stopProgress()

	verifyErrs := make([]error, len(findings))
	for j, res := range results {
		f := &findings[jobOwners[j]]
		f.Outcome = res.Outcome
		if res.Err != nil {
			f.VerifyError = res.Err.Error()
			verifyErrs[jobOwners[j]] = res.Err
		}
		if res.Outcome != nil {
			for _, note := range res.Outcome.Response.Notes(f.Resource.CrossOriginValue) {
				report.AddWarning(fmt.Sprintf("%s %s", f.Resource.URL, note))
			}
		}
	}

	for i := range findings {
		f := &findings[i]
		f.Issues = evaluate(*f, verifyErrs[i])

		if s.suggest && f.RequiresIntegrity && !f.Resource.HasIntegrity() {
			s.suggestIntegrity(ctx, report, f)
		}

		if err := report.AddFinding(*f); err != nil {
			return nil, err
		}
	}

	if err := report.SetHeaders(checker.AuditHeaders(document)); err != nil {
		return nil, err
	}
	report.Complete()

	s.logger.Infow("audit complete", "document", name, "resources", len(resources), "issues", report.IssueCount())
	return report, nil
}

func (s *Service) suggestIntegrity(ctx context.Context, report *audit.Report, f *audit.ResourceFinding) {
	value, err := s.runner.Verifier.Digest(ctx, f.Resource.URL, s.suggestAlgo)
	if err != nil {
		report.AddWarning(fmt.Sprintf("could not compute suggested integrity for %s: %v", f.Resource.URL, err))
		return
	}
	f.SuggestedIntegrity = value
}

// evaluate turns one classified, verified resource into its counted issues.
// A missing crossorigin only counts for resources that require integrity.
func evaluate(f audit.ResourceFinding, verifyErr error) []audit.Issue {
	var issues []audit.Issue
	r := f.Resource
	add := func(kind audit.IssueKind, severity, msg string) {
		issues = append(issues, audit.Issue{Kind: kind, Resource: r.URL, Message: msg, Severity: severity})
	}

	if f.RequiresIntegrity && !r.HasIntegrity() {
		add(audit.IssueMissingIntegrity, "high", "missing integrity attribute")
	}

	if r.HasIntegrity() {
		var formatErr *checker.InvalidIntegrityFormatError
		var statusErr *checker.HTTPStatusError
		switch {
		case errors.As(verifyErr, &formatErr):
			add(audit.IssueInvalidIntegrityFormat, "high", formatErr.Error())
		case errors.As(verifyErr, &statusErr):
			add(audit.IssueHTTPStatus, "medium", fmt.Sprintf("fetch returned HTTP %d", statusErr.StatusCode))
		case verifyErr != nil:
			add(audit.IssueNetwork, "medium", verifyErr.Error())
		case f.Outcome != nil && !f.Outcome.Matches:
			add(audit.IssueIntegrityMismatch, "high", fmt.Sprintf("integrity mismatch: expected %s, computed %s", f.Outcome.Expected, f.Outcome.Computed))
		}
	}

	if f.RequiresIntegrity && !r.CrossOrigin {
		add(audit.IssueMissingCrossOrigin, "medium", "missing crossorigin attribute")
	}

	return issues
}
