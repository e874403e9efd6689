package checker

import (
	"fmt"
	"strings"
)

// SecurityHeaderSpec defines one header the document is expected to declare.
type SecurityHeaderSpec struct {
	Name           string `json:"name" yaml:"name"`
	Severity       string `json:"severity" yaml:"severity"` // "high", "medium"
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// securityHeaderSpecs lists the tracked headers in reporting order.
var securityHeaderSpecs = []SecurityHeaderSpec{
	{
		Name:           "Content-Security-Policy",
		Severity:       "high",
		Recommendation: `Add <meta http-equiv="Content-Security-Policy" content="default-src 'self'">`,
	},
	{
		Name:           "X-Frame-Options",
		Severity:       "high",
		Recommendation: "Add 'X-Frame-Options: DENY' or 'SAMEORIGIN'",
	},
	{
		Name:           "X-Content-Type-Options",
		Severity:       "high",
		Recommendation: "Add 'X-Content-Type-Options: nosniff'",
	},
	{
		Name:           "Referrer-Policy",
		Severity:       "medium",
		Recommendation: "Add 'Referrer-Policy: strict-origin-when-cross-origin' or 'no-referrer'",
	},
}

// HeaderAuditResult records which tracked headers the document mentions.
type HeaderAuditResult struct {
	Present []string             `json:"present" yaml:"present"`
	Missing []SecurityHeaderSpec `json:"missing" yaml:"missing"`
}

// Issues returns one description per missing header, in tracking order.
func (r HeaderAuditResult) Issues() []string {
	issues := make([]string, 0, len(r.Missing))
	for _, spec := range r.Missing {
		issues = append(issues, fmt.Sprintf("Missing security header: %s", spec.Name))
	}
	return issues
}

// AuditHeaders checks the raw document text for each tracked header name.
//
// The check is a case-sensitive substring search over the whole document, so
// a name inside a comment or a script string satisfies it just as a real
// <meta http-equiv> element does.
func AuditHeaders(document string) HeaderAuditResult {
	result := HeaderAuditResult{
		Present: []string{},
		Missing: []SecurityHeaderSpec{},
	}
	for _, spec := range securityHeaderSpecs {
		if strings.Contains(document, spec.Name) {
			result.Present = append(result.Present, spec.Name)
		} else {
			result.Missing = append(result.Missing, spec)
		}
	}
	return result
}
