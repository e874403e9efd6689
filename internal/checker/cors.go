package checker

import (
	"net/http"
	"strings"
)

// ResponseHeaders holds the response headers of a fetched resource that
// decide whether a browser can enforce its integrity value.
type ResponseHeaders struct {
	AllowOrigin      string `json:"allow_origin,omitempty" yaml:"allow_origin,omitempty"`
	AllowCredentials bool   `json:"allow_credentials,omitempty" yaml:"allow_credentials,omitempty"`
	VaryUserAgent    bool   `json:"vary_user_agent,omitempty" yaml:"vary_user_agent,omitempty"`
}

// AnalyzeResponseHeaders extracts the CORS and Vary headers of a response.
func AnalyzeResponseHeaders(h http.Header) ResponseHeaders {
	if h == nil {
		return ResponseHeaders{}
	}
	return ResponseHeaders{
		AllowOrigin:      h.Get("Access-Control-Allow-Origin"),
		AllowCredentials: strings.EqualFold(h.Get("Access-Control-Allow-Credentials"), "true"),
		VaryUserAgent:    varyIncludes(h.Values("Vary"), "user-agent"),
	}
}

// Notes returns warnings for a resource loaded with the given crossorigin
// attribute value. They never count as issues.
func (r ResponseHeaders) Notes(crossOriginValue string) []string {
	var notes []string
	if r.VaryUserAgent {
		notes = append(notes, "responds with Vary: User-Agent, its digest may differ across browsers")
	}

	if r.AllowOrigin == "" {
		notes = append(notes, "sends no Access-Control-Allow-Origin header, browsers will block the integrity-checked load")
		return notes
	}

	if strings.EqualFold(crossOriginValue, "use-credentials") {
		if r.AllowOrigin == "*" {
			notes = append(notes, "allows any origin (*), which browsers reject for crossorigin=\"use-credentials\"")
		}
		if !r.AllowCredentials {
			notes = append(notes, "crossorigin=\"use-credentials\" requires Access-Control-Allow-Credentials: true")
		}
	}
	return notes
}

func varyIncludes(values []string, name string) bool {
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(token), name) {
				return true
			}
		}
	}
	return false
}
