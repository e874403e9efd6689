package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/khanhnv2901/seca-sri/internal/checker"
	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "present", "pass":
		return colorSuccess(status)
	case "missing", "mismatch", "error", "fail":
		return colorError(status)
	case "skipped", "exempt":
		return colorWarn(status)
	default:
		return status
	}
}

// TextWriter prints the human-readable trace: resource inventory,
// per-resource validation, header audit and summary.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that prints to output.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write prints the report. Resources appear in extraction order.
func (w *TextWriter) Write(report *audit.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", colorBold("SRI and security header audit:"), report.Document)

	fmt.Fprintf(&b, "%s\n", colorInfo(fmt.Sprintf("Found %d external resource(s)", len(report.Findings))))
	for _, f := range report.Findings {
		fmt.Fprintf(&b, "  %d. [%s] %s\n", f.Resource.Index+1, f.Resource.Kind, f.Resource.URL)
	}
	b.WriteString("\n")

	if len(report.Findings) > 0 {
		fmt.Fprintf(&b, "%s\n", colorInfo("Validating resources"))
		for _, f := range report.Findings {
			writeFindingTrace(&b, f)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n", colorInfo("Checking security headers"))
	for _, name := range report.Headers.Present {
		fmt.Fprintf(&b, "  %s: %s\n", name, formatStatusWithColor("present"))
	}
	for _, spec := range report.Headers.Missing {
		fmt.Fprintf(&b, "  %s: %s (%s)\n", spec.Name, formatStatusWithColor("missing"), spec.Recommendation)
	}
	b.WriteString("\n")

	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "%s\n", colorWarn("Warnings"))
		for _, warning := range report.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
		b.WriteString("\n")
	}

	writeSummary(&b, report)

	_, err := io.WriteString(w.output, b.String())
	return err
}

func writeFindingTrace(b *strings.Builder, f audit.ResourceFinding) {
	r := f.Resource
	fmt.Fprintf(b, "  [%d] %s\n", r.Index+1, r.URL)

	switch {
	case r.HasIntegrity() && f.Outcome != nil && f.Outcome.Matches:
		fmt.Fprintf(b, "      SRI: %s (%s)\n", formatStatusWithColor("ok"), f.Outcome.Algorithm.DisplayName())
	case r.HasIntegrity() && f.Outcome != nil:
		fmt.Fprintf(b, "      SRI: %s\n", formatStatusWithColor("mismatch"))
		fmt.Fprintf(b, "        expected: %s\n", f.Outcome.Expected)
		fmt.Fprintf(b, "        computed: %s\n", f.Outcome.Computed)
	case r.HasIntegrity():
		fmt.Fprintf(b, "      SRI: %s (%s)\n", formatStatusWithColor("error"), f.VerifyError)
	case !f.RequiresIntegrity:
		fmt.Fprintf(b, "      SRI: %s (exempt: %s)\n", formatStatusWithColor("skipped"), f.ExemptedBy)
	default:
		fmt.Fprintf(b, "      SRI: %s\n", formatStatusWithColor("missing"))
	}

	switch {
	case r.CrossOrigin:
		fmt.Fprintf(b, "      crossorigin: %s\n", formatStatusWithColor("present"))
	case f.RequiresIntegrity:
		fmt.Fprintf(b, "      crossorigin: %s\n", formatStatusWithColor("missing"))
	default:
		fmt.Fprintf(b, "      crossorigin: absent (not required)\n")
	}

	if f.SuggestedIntegrity != "" {
		fmt.Fprintf(b, "      suggested: %s\n", TagTemplate(r, f.SuggestedIntegrity))
	}
}

func writeSummary(b *strings.Builder, report *audit.Report) {
	s := report.Summary()
	fmt.Fprintf(b, "%s\n", colorBold("Summary"))
	fmt.Fprintf(b, "  Resources: %d (%d require SRI, %d exempt)\n", s.Resources, s.RequireIntegrity, s.Exempt)
	fmt.Fprintf(b, "  Verified:  %d (%d matched)\n", s.Verified, s.Matched)
	fmt.Fprintf(b, "  Headers:   %d/%d present\n", s.HeadersPresent, s.HeadersPresent+s.HeadersMissing)

	if s.Issues == 0 {
		fmt.Fprintf(b, "  Issues:    %s\n", colorSuccess("0"))
		fmt.Fprintf(b, "%s\n", colorSuccess("All checks passed."))
		return
	}
	fmt.Fprintf(b, "  Issues:    %s\n", colorError(fmt.Sprint(s.Issues)))
	fmt.Fprintf(b, "%s\n", colorError(fmt.Sprintf("Found %d issue(s).", s.Issues)))
}

// TagTemplate renders a ready-to-paste element carrying the given integrity.
func TagTemplate(r checker.Resource, integrity string) string {
	if r.Kind == checker.KindScript {
		return fmt.Sprintf(`<script src="%s" integrity="%s" crossorigin="anonymous"></script>`, r.URL, integrity)
	}
	return fmt.Sprintf(`<link rel="stylesheet" href="%s" integrity="%s" crossorigin="anonymous">`, r.URL, integrity)
}
