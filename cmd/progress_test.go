package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgressPrinterLifecycle(t *testing.T) {
	var buf bytes.Buffer
	printer := newProgressPrinter(&buf, 0, "verify")
	if printer.total != 1 {
		t.Fatalf("expected total to be clamped to 1, got %d", printer.total)
	}

	printer.Start()
	printer.Increment(true, 0.5)
	printer.Increment(false, 1.0)
	time.Sleep(350 * time.Millisecond) // allow ticker to tick at least once
	printer.Stop()
	printer.Stop()

	output := buf.String()
	if !strings.Contains(output, "[verify] Progress: 2/2") {
		t.Fatalf("expected summary progress, got %q", output)
	}
	if !strings.Contains(output, "OK:1") || !strings.Contains(output, "Fail:1") {
		t.Fatalf("expected OK/Fail counts in output, got %q", output)
	}
	if !strings.Contains(output, "Avg:0.75s") {
		t.Fatalf("expected average duration in output, got %q", output)
	}
	if strings.Count(output, "\n") != 1 {
		t.Fatalf("expected Stop to finish the line exactly once, got %q", output)
	}
}
