package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/khanhnv2901/seca-sri/internal/domain/audit"
)

// YAMLWriter outputs the same envelope as JSONWriter in YAML.
type YAMLWriter struct {
	output  io.Writer
	version string
}

// NewYAMLWriter creates a YAMLWriter that outputs to the given writer.
func NewYAMLWriter(output io.Writer, version string) *YAMLWriter {
	return &YAMLWriter{output: output, version: version}
}

func (w *YAMLWriter) Write(report *audit.Report) error {
	enc := yaml.NewEncoder(w.output)
	enc.SetIndent(2)
	if err := enc.Encode(newEnvelope(report, w.version)); err != nil {
		return err
	}
	return enc.Close()
}
