package audit

import (
	"errors"
	"time"

	"github.com/khanhnv2901/seca-sri/internal/checker"
)

// IssueKind classifies a counted problem.
type IssueKind string

const (
	IssueMissingIntegrity       IssueKind = "missing-integrity"
	IssueIntegrityMismatch      IssueKind = "integrity-mismatch"
	IssueInvalidIntegrityFormat IssueKind = "invalid-integrity-format"
	IssueHTTPStatus             IssueKind = "http-status"
	IssueNetwork                IssueKind = "network"
	IssueMissingCrossOrigin     IssueKind = "missing-crossorigin"
	IssueMissingHeader          IssueKind = "missing-header"
)

// Issue is one problem that counts toward the exit status.
type Issue struct {
	Kind     IssueKind `json:"kind" yaml:"kind"`
	Resource string    `json:"resource,omitempty" yaml:"resource,omitempty"`
	Message  string    `json:"message" yaml:"message"`
	Severity string    `json:"severity" yaml:"severity"`
}

// ResourceFinding is everything learned about one extracted resource.
type ResourceFinding struct {
	Resource           checker.Resource             `json:"resource" yaml:"resource"`
	RequiresIntegrity  bool                         `json:"requires_integrity" yaml:"requires_integrity"`
	ExemptedBy         string                       `json:"exempted_by,omitempty" yaml:"exempted_by,omitempty"`
	ExemptionReason    string                       `json:"exemption_reason,omitempty" yaml:"exemption_reason,omitempty"`
	Outcome            *checker.VerificationOutcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	VerifyError        string                       `json:"verify_error,omitempty" yaml:"verify_error,omitempty"`
	SuggestedIntegrity string                       `json:"suggested_integrity,omitempty" yaml:"suggested_integrity,omitempty"`
	Issues             []Issue                      `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Report is the result of one audit run. Once completed it no longer
// accepts findings or issues.
type Report struct {
	Document    string                    `json:"document" yaml:"document"`
	StartedAt   time.Time                 `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time                 `json:"completed_at" yaml:"completed_at"`
	Findings    []ResourceFinding         `json:"resources" yaml:"resources"`
	Headers     checker.HeaderAuditResult `json:"headers" yaml:"headers"`
	Issues      []Issue                   `json:"issues" yaml:"issues"`
	Warnings    []string                  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	completed   bool
}

// Summary holds the counters printed at the end of a run.
type Summary struct {
	Resources        int `json:"resources" yaml:"resources"`
	RequireIntegrity int `json:"require_integrity" yaml:"require_integrity"`
	Exempt           int `json:"exempt" yaml:"exempt"`
	Verified         int `json:"verified" yaml:"verified"`
	Matched          int `json:"matched" yaml:"matched"`
	HeadersPresent   int `json:"headers_present" yaml:"headers_present"`
	HeadersMissing   int `json:"headers_missing" yaml:"headers_missing"`
	Issues           int `json:"issues" yaml:"issues"`
}

var ErrReportCompleted = errors.New("report is already completed")

// NewReport starts a report for the given document path.
func NewReport(document string) *Report {
	return &Report{
		Document:  document,
		StartedAt: time.Now().UTC(),
		Findings:  make([]ResourceFinding, 0),
		Issues:    make([]Issue, 0),
	}
}

// AddFinding records a resource finding and counts its issues.
func (r *Report) AddFinding(f ResourceFinding) error {
	if r.completed {
		return ErrReportCompleted
	}
	r.Findings = append(r.Findings, f)
	r.Issues = append(r.Issues, f.Issues...)
	return nil
}

// SetHeaders records the header audit and counts one issue per missing header.
func (r *Report) SetHeaders(result checker.HeaderAuditResult) error {
	if r.completed {
		return ErrReportCompleted
	}
	r.Headers = result
	for i, msg := range result.Issues() {
		r.Issues = append(r.Issues, Issue{
			Kind:     IssueMissingHeader,
			Message:  msg,
			Severity: result.Missing[i].Severity,
		})
	}
	return nil
}

// AddWarning records a note that does not affect the exit status.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Complete seals the report.
func (r *Report) Complete() {
	if r.completed {
		return
	}
	r.CompletedAt = time.Now().UTC()
	r.completed = true
}

// IsCompleted reports whether Complete has been called.
func (r *Report) IsCompleted() bool {
	return r.completed
}

// IssueCount is the number of counted issues.
func (r *Report) IssueCount() int {
	return len(r.Issues)
}

// ExitCode is 0 for a clean document and 1 otherwise.
func (r *Report) ExitCode() int {
	if r.IssueCount() == 0 {
		return 0
	}
	return 1
}

// Summary derives the end-of-run counters.
func (r *Report) Summary() Summary {
	s := Summary{
		Resources:      len(r.Findings),
		HeadersPresent: len(r.Headers.Present),
		HeadersMissing: len(r.Headers.Missing),
		Issues:         r.IssueCount(),
	}
	for _, f := range r.Findings {
		if f.RequiresIntegrity {
			s.RequireIntegrity++
		} else {
			s.Exempt++
		}
		if f.Outcome != nil {
			s.Verified++
			if f.Outcome.Matches {
				s.Matched++
			}
		}
	}
	return s
}
