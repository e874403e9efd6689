package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
)

// MarkdownWriter outputs the report as GitHub-flavored markdown, suitable for
// a CI job summary or a pull request comment.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

func (w *MarkdownWriter) Write(report *audit.Report) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("SRI and Security Header Audit")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", "`" + report.Document + "`"},
			{"Audited At", report.CompletedAt.Format("2006-01-02 15:04:05 MST")},
			{"Issues", strconv.Itoa(report.IssueCount())},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
	w.writeResources(md, report)
	w.writeHeaders(md, report)
	w.writeIssues(md, report)

	if len(report.Warnings) > 0 {
		md.H2("Warnings")
		md.PlainText("")
		md.BulletList(report.Warnings...)
		md.PlainText("")
	}

	return md.Build()
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *audit.Report) {
	if report.IssueCount() == 0 {
		md.Tip("All resources and security headers passed.")
	} else {
		md.Cautionf("%d issue(s) found.", report.IssueCount())
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeResources(md *markdown.Markdown, report *audit.Report) {
	md.H2("Resources")
	md.PlainText("")

	if len(report.Findings) == 0 {
		md.PlainText("No external resources found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		rows = append(rows, []string{
			strconv.Itoa(f.Resource.Index + 1),
			string(f.Resource.Kind),
			"`" + f.Resource.URL + "`",
			sriStatus(f),
			crossOriginStatus(f),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Kind", "URL", "SRI", "crossorigin"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range report.Findings {
		if f.SuggestedIntegrity == "" {
			continue
		}
		md.PlainText(fmt.Sprintf("Suggested tag for resource %d:", f.Resource.Index+1))
		md.CodeBlocks(markdown.SyntaxHighlight("html"), TagTemplate(f.Resource, f.SuggestedIntegrity))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeHeaders(md *markdown.Markdown, report *audit.Report) {
	md.H2("Security Headers")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Headers.Present)+len(report.Headers.Missing))
	for _, name := range report.Headers.Present {
		rows = append(rows, []string{name, "present", ""})
	}
	for _, spec := range report.Headers.Missing {
		rows = append(rows, []string{spec.Name, "**missing**", spec.Recommendation})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Header", "Status", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *audit.Report) {
	if report.IssueCount() == 0 {
		return
	}
	md.H2("Issues")
	md.PlainText("")

	items := make([]string, 0, report.IssueCount())
	for _, issue := range report.Issues {
		if issue.Resource != "" {
			items = append(items, fmt.Sprintf("[%s] %s: %s", issue.Kind, issue.Resource, issue.Message))
		} else {
			items = append(items, fmt.Sprintf("[%s] %s", issue.Kind, issue.Message))
		}
	}
	md.BulletList(items...)
	md.PlainText("")
}

func sriStatus(f audit.ResourceFinding) string {
	switch {
	case f.Outcome != nil && f.Outcome.Matches:
		return "ok (" + f.Outcome.Algorithm.DisplayName() + ")"
	case f.Outcome != nil:
		return "**mismatch**"
	case f.VerifyError != "":
		return "**error**"
	case !f.RequiresIntegrity:
		return "exempt (" + f.ExemptedBy + ")"
	}
	return "**missing**"
}

func crossOriginStatus(f audit.ResourceFinding) string {
	switch {
	case f.Resource.CrossOrigin:
		return "present"
	case f.RequiresIntegrity:
		return "**missing**"
	}
	return "not required"
}
