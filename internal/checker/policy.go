package checker

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// ExemptionRule exempts matching resources from the SRI requirement.
type ExemptionRule struct {
	Name   string
	Reason string
	Match  func(Resource) bool
}

var preconnectPattern = mustPattern(`\brel\s*=\s*["']preconnect["']`)

// DefaultExemptions returns the built-in rules. Extra rules may be appended
// but these are always evaluated first.
func DefaultExemptions() []ExemptionRule {
	return []ExemptionRule{
		{
			Name:   "preconnect",
			Reason: "preconnect hints open a connection without fetching a body",
			Match:  markupMatches(preconnectPattern),
		},
		{
			Name:   "font-kit",
			Reason: "font kit delivery varies per account, no stable hash exists",
			Match:  HostIn("use.typekit.net", "p.typekit.net"),
		},
		{
			Name:   "dynamic-webfont-css",
			Reason: "web font CSS is generated per user agent, a fixed hash would break",
			Match:  HostIn("fonts.googleapis.com"),
		},
	}
}

// HostIn matches resources served from any of the given hosts.
func HostIn(hosts ...string) func(Resource) bool {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	return func(r Resource) bool {
		_, ok := set[r.Host()]
		return ok
	}
}

func markupMatches(pattern *regexp2.Regexp) func(Resource) bool {
	return func(r Resource) bool {
		ok, err := pattern.MatchString(r.Markup)
		return err == nil && ok
	}
}

// Policy decides which resources must carry an integrity attribute.
type Policy struct {
	Rules []ExemptionRule
}

// NewPolicy builds a policy from the default rules plus one host rule per
// additional exempt host.
func NewPolicy(extraHosts ...string) *Policy {
	rules := DefaultExemptions()
	for _, host := range extraHosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		rules = append(rules, ExemptionRule{
			Name:   "configured:" + host,
			Reason: "host exempted by configuration",
			Match:  HostIn(host),
		})
	}
	return &Policy{Rules: rules}
}

// Classify returns whether r requires integrity and, when it does not, the
// rule that exempted it.
func (p *Policy) Classify(r Resource) (bool, *ExemptionRule) {
	for i := range p.Rules {
		if p.Rules[i].Match(r) {
			return false, &p.Rules[i]
		}
	}
	return true, nil
}

// RequiresIntegrity reports whether r must declare an integrity digest.
func (p *Policy) RequiresIntegrity(r Resource) bool {
	required, _ := p.Classify(r)
	return required
}
