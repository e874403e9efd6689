package checker

import (
	"net/http"
	"strings"
	"testing"
)

func TestAnalyzeResponseHeaders(t *testing.T) {
	h := http.Header{
		"Access-Control-Allow-Origin":      []string{"*"},
		"Access-Control-Allow-Credentials": []string{"TRUE"},
		"Vary":                             []string{"Accept-Encoding", "Origin, User-Agent"},
	}

	got := AnalyzeResponseHeaders(h)
	if got.AllowOrigin != "*" || !got.AllowCredentials || !got.VaryUserAgent {
		t.Fatalf("unexpected analysis: %+v", got)
	}

	if empty := AnalyzeResponseHeaders(nil); empty != (ResponseHeaders{}) {
		t.Fatalf("expected zero value for nil header, got %+v", empty)
	}
}

func TestResponseHeadersNotes(t *testing.T) {
	tests := []struct {
		name        string
		headers     ResponseHeaders
		crossOrigin string
		want        []string
	}{
		{
			name:    "no notes",
			headers: ResponseHeaders{AllowOrigin: "*"},
		},
		{
			name:    "missing allow origin",
			headers: ResponseHeaders{},
			want:    []string{"Access-Control-Allow-Origin"},
		},
		{
			name:    "vary user agent",
			headers: ResponseHeaders{AllowOrigin: "*", VaryUserAgent: true},
			want:    []string{"Vary: User-Agent"},
		},
		{
			name:        "credentials with wildcard",
			headers:     ResponseHeaders{AllowOrigin: "*"},
			crossOrigin: "use-credentials",
			want:        []string{"allows any origin", "Access-Control-Allow-Credentials"},
		},
		{
			name:        "credentials allowed",
			headers:     ResponseHeaders{AllowOrigin: "https://example.com", AllowCredentials: true},
			crossOrigin: "use-credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := tt.headers.Notes(tt.crossOrigin)
			if len(notes) != len(tt.want) {
				t.Fatalf("expected %d notes, got %v", len(tt.want), notes)
			}
			for i, want := range tt.want {
				if !strings.Contains(notes[i], want) {
					t.Errorf("note %d = %q, want it to mention %q", i, notes[i], want)
				}
			}
		})
	}
}
