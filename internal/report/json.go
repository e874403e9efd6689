package report

import (
	"encoding/json"
	"io"

	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
)

// JSONWriter outputs the report envelope as indented JSON for CI tooling.
type JSONWriter struct {
	output  io.Writer
	version string
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, version string) *JSONWriter {
	return &JSONWriter{output: output, version: version}
}

func (w *JSONWriter) Write(report *audit.Report) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	return enc.Encode(newEnvelope(report, w.version))
}
