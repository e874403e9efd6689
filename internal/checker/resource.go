package checker

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// ResourceKind identifies which element type referenced a resource.
type ResourceKind string

const (
	KindStylesheetLink ResourceKind = "stylesheet-link"
	KindScript         ResourceKind = "script"
)

// Resource is one externally-hosted asset referenced by the document.
// Values are copied around; nothing downstream mutates one after extraction.
type Resource struct {
	Index            int          `json:"index" yaml:"index"`
	Kind             ResourceKind `json:"kind" yaml:"kind"`
	URL              string       `json:"url" yaml:"url"`
	Integrity        string       `json:"integrity,omitempty" yaml:"integrity,omitempty"`
	CrossOrigin      bool         `json:"crossorigin" yaml:"crossorigin"`
	CrossOriginValue string       `json:"crossorigin_value,omitempty" yaml:"crossorigin_value,omitempty"`
	Markup           string       `json:"-" yaml:"-"`
}

// HasIntegrity reports whether the element declared an integrity attribute.
func (r Resource) HasIntegrity() bool {
	return r.Integrity != ""
}

// Host returns the lower-cased hostname of the resource URL.
func (r Resource) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

const patternTimeout = 2 * time.Second

// An element is bounded by its opening "<tag" and the first ">" after it, and
// only counts when its href/src value starts with http:// or https://.
var (
	linkPattern        = mustPattern(`<link\b[^>]*?\bhref\s*=\s*["'](https?://[^"']+)["'][^>]*>`)
	scriptPattern      = mustPattern(`<script\b[^>]*?\bsrc\s*=\s*["'](https?://[^"']+)["'][^>]*>`)
	integrityPattern   = mustPattern(`\bintegrity\s*=\s*["']([^"']+)["']`)
	crossOriginPattern = mustPattern(`\bcrossorigin\s*=\s*["']([^"']*)["']`)
)

func mustPattern(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.IgnoreCase)
	re.MatchTimeout = patternTimeout
	return re
}

// ExtractResources scans the raw document text for external link and script
// elements. All links are returned first, then all scripts, each group in
// document order. This is pattern matching, not an HTML parse: elements the
// patterns cannot bound are skipped.
func ExtractResources(document string) ([]Resource, error) {
	links, err := scanElements(document, linkPattern, KindStylesheetLink)
	if err != nil {
		return nil, err
	}
	scripts, err := scanElements(document, scriptPattern, KindScript)
	if err != nil {
		return nil, err
	}

	resources := append(links, scripts...)
	for i := range resources {
		resources[i].Index = i
	}
	return resources, nil
}

func scanElements(document string, pattern *regexp2.Regexp, kind ResourceKind) ([]Resource, error) {
	var resources []Resource

	m, err := pattern.FindStringMatch(document)
	for ; m != nil; m, err = pattern.FindNextMatch(m) {
		markup := m.String()
		resource := Resource{
			Kind:   kind,
			URL:    m.GroupByNumber(1).String(),
			Markup: markup,
		}

		integrity, err := firstGroup(integrityPattern, markup)
		if err != nil {
			return nil, err
		}
		resource.Integrity = integrity

		value, err := firstGroup(crossOriginPattern, markup)
		if err != nil {
			return nil, err
		}
		resource.CrossOriginValue = value
		// bare attribute: <script crossorigin src=...>. The search covers the
		// whole element, so a URL containing "crossorigin" also satisfies it.
		resource.CrossOrigin = strings.Contains(strings.ToLower(markup), "crossorigin")

		resources = append(resources, resource)
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s elements: %w", kind, err)
	}

	return resources, nil
}

func firstGroup(pattern *regexp2.Regexp, s string) (string, error) {
	m, err := pattern.FindStringMatch(s)
	if err != nil || m == nil {
		return "", err
	}
	return m.GroupByNumber(1).String(), nil
}
