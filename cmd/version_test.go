package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	original := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = original })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"version"}, "seca-sri version 1.2.3"},
		{"verbose", []string{"version", "--verbose"}, "Git Commit:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)

			if code := execute(cmd, tt.args); code != 0 {
				t.Fatalf("expected exit 0, got %d: %s", code, out.String())
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("expected %q, got %s", tt.want, out.String())
			}
		})
	}

	if got := userAgent(); got != "seca-sri/1.2.3" {
		t.Fatalf("unexpected user agent %s", got)
	}
}
