package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/khanhnv2901/seca-sri/internal/checker"
	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
	sharederrors "github.com/khanhnv2901/seca-sri/internal/shared/errors"
)

func init() {
	color.NoColor = true
}

func sampleReport(t *testing.T) *audit.Report {
	t.Helper()
	report := audit.NewReport("index.html")

	findings := []audit.ResourceFinding{
		{
			Resource: checker.Resource{
				Index:       0,
				Kind:        checker.KindStylesheetLink,
				URL:         "https://cdn.example.com/site.css",
				Integrity:   "sha384-abc",
				CrossOrigin: true,
			},
			RequiresIntegrity: true,
			Outcome: &checker.VerificationOutcome{
				Matches:   true,
				Algorithm: checker.HashAlgorithmSHA384,
				Expected:  "abc",
				Computed:  "abc",
			},
		},
		{
			Resource: checker.Resource{
				Index: 1,
				Kind:  checker.KindStylesheetLink,
				URL:   "https://fonts.googleapis.com/css2?family=Inter",
			},
			ExemptedBy: "dynamic-webfont-css",
		},
		{
			Resource: checker.Resource{
				Index: 2,
				Kind:  checker.KindScript,
				URL:   "https://cdn.example.com/app.js",
			},
			RequiresIntegrity:  true,
			SuggestedIntegrity: "sha384-suggested",
			Issues: []audit.Issue{
				{Kind: audit.IssueMissingIntegrity, Resource: "https://cdn.example.com/app.js", Message: "missing integrity attribute", Severity: "high"},
				{Kind: audit.IssueMissingCrossOrigin, Resource: "https://cdn.example.com/app.js", Message: "missing crossorigin attribute", Severity: "medium"},
			},
		},
	}
	for _, f := range findings {
		if err := report.AddFinding(f); err != nil {
			t.Fatalf("AddFinding failed: %v", err)
		}
	}
	doc := "Content-Security-Policy X-Frame-Options X-Content-Type-Options"
	if err := report.SetHeaders(checker.AuditHeaders(doc)); err != nil {
		t.Fatalf("SetHeaders failed: %v", err)
	}
	report.AddWarning("example warning")
	report.Complete()
	return report
}

func cleanReport(t *testing.T) *audit.Report {
	t.Helper()
	report := audit.NewReport("clean.html")
	doc := "Content-Security-Policy X-Frame-Options X-Content-Type-Options Referrer-Policy"
	if err := report.SetHeaders(checker.AuditHeaders(doc)); err != nil {
		t.Fatalf("SetHeaders failed: %v", err)
	}
	report.Complete()
	return report
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"yaml", FormatYAML},
		{"md", FormatMarkdown},
		{" markdown ", FormatMarkdown},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if err != nil {
			t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, sharederrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewWriter_Unsupported(t *testing.T) {
	if _, err := NewWriter(Format("html"), &bytes.Buffer{}, "test"); !errors.Is(err, sharederrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextWriter(&buf).Write(sampleReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Found 3 external resource(s)",
		"1. [stylesheet-link] https://cdn.example.com/site.css",
		"SRI: ok (SHA-384)",
		"SRI: skipped (exempt: dynamic-webfont-css)",
		"crossorigin: absent (not required)",
		"SRI: missing",
		"crossorigin: missing",
		`suggested: <script src="https://cdn.example.com/app.js" integrity="sha384-suggested" crossorigin="anonymous"></script>`,
		"Referrer-Policy: missing",
		"example warning",
		"Found 3 issue(s).",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}

	if strings.Index(out, "site.css") > strings.Index(out, "app.js") {
		t.Error("resources printed out of extraction order")
	}
}

func TestTextWriter_Clean(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextWriter(&buf).Write(cleanReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Found 0 external resource(s)") {
		t.Errorf("expected empty inventory\n%s", out)
	}
	if strings.Contains(out, "Validating resources") {
		t.Errorf("did not expect validation trace for zero resources\n%s", out)
	}
	if !strings.Contains(out, "All checks passed.") {
		t.Errorf("expected success summary\n%s", out)
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatJSON, &buf, "1.2.3")
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Write(sampleReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded struct {
		Version  string        `json:"version"`
		ExitCode int           `json:"exit_code"`
		Summary  audit.Summary `json:"summary"`
		Report   struct {
			Document  string `json:"document"`
			Resources []struct {
				Resource struct {
					URL string `json:"url"`
				} `json:"resource"`
				SuggestedIntegrity string `json:"suggested_integrity"`
			} `json:"resources"`
			Issues []audit.Issue `json:"issues"`
		} `json:"report"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if decoded.Version != "1.2.3" || decoded.ExitCode != 1 {
		t.Fatalf("unexpected envelope: version=%s exit=%d", decoded.Version, decoded.ExitCode)
	}
	if decoded.Summary.Issues != 3 || decoded.Summary.Resources != 3 || decoded.Summary.Exempt != 1 {
		t.Fatalf("unexpected summary: %+v", decoded.Summary)
	}
	if len(decoded.Report.Resources) != 3 || decoded.Report.Resources[2].SuggestedIntegrity != "sha384-suggested" {
		t.Fatalf("unexpected resources: %+v", decoded.Report.Resources)
	}
	if decoded.Report.Issues[2].Kind != audit.IssueMissingHeader {
		t.Fatalf("expected header issue last, got %+v", decoded.Report.Issues)
	}
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatYAML, &buf, "1.2.3")
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Write(cleanReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if decoded["version"] != "1.2.3" {
		t.Errorf("version = %v", decoded["version"])
	}
	if decoded["exit_code"] != 0 {
		t.Errorf("exit_code = %v", decoded["exit_code"])
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatMarkdown, &buf, "1.2.3")
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Write(sampleReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# SRI and Security Header Audit",
		"## Resources",
		"ok (SHA-384)",
		"exempt (dynamic-webfont-css)",
		"```html",
		"## Security Headers",
		"Referrer-Policy",
		"## Issues",
		"[missing-integrity]",
		"## Warnings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}
}

func TestTagTemplate(t *testing.T) {
	link := checker.Resource{Kind: checker.KindStylesheetLink, URL: "https://cdn.example.com/a.css"}
	want := `<link rel="stylesheet" href="https://cdn.example.com/a.css" integrity="sha384-x" crossorigin="anonymous">`
	if got := TagTemplate(link, "sha384-x"); got != want {
		t.Errorf("TagTemplate(link) = %s", got)
	}

	script := checker.Resource{Kind: checker.KindScript, URL: "https://cdn.example.com/a.js"}
	want = `<script src="https://cdn.example.com/a.js" integrity="sha384-x" crossorigin="anonymous"></script>`
	if got := TagTemplate(script, "sha384-x"); got != want {
		t.Errorf("TagTemplate(script) = %s", got)
	}
}
