package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
	sharederrors "github.com/khanhnv2901/seca-sri/internal/shared/errors"
)

// Writer renders a finished audit report.
type Writer interface {
	Write(report *audit.Report) error
}

// Format names an output format accepted by NewWriter.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format in help-text order.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat accepts a format name case-insensitively; "md" and "yml" are aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %s", sharederrors.ErrUnsupportedFormat, name)
}

// NewWriter returns the writer for format, writing to output.
func NewWriter(format Format, output io.Writer, version string) (Writer, error) {
	switch format {
	case FormatText:
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, version), nil
	case FormatYAML:
		return NewYAMLWriter(output, version), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	}
	return nil, fmt.Errorf("%w: %s", sharederrors.ErrUnsupportedFormat, format)
}

// Envelope wraps a report for machine-readable formats.
type Envelope struct {
	Version  string        `json:"version" yaml:"version"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Summary  audit.Summary `json:"summary" yaml:"summary"`
	Report   *audit.Report `json:"report" yaml:"report"`
}

func newEnvelope(report *audit.Report, version string) Envelope {
	return Envelope{
		Version:  version,
		ExitCode: report.ExitCode(),
		Summary:  report.Summary(),
		Report:   report,
	}
}
