package strategy

import (
	"regexp"
	"strings"
)

// Rule is one matcher in the ordered rule list. A rule matches when its
// pattern matches or any keyword is contained in the lowercased query.
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Keywords   []string
	Strategy   Strategy
	Confidence float64
	Reasoning  string
}

// Matches reports whether the rule applies to the query.
func (r Rule) Matches(query string) bool {
	if r.Pattern != nil && r.Pattern.MatchString(query) {
		return true
	}
	lower := strings.ToLower(query)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in rule list. Declaration order is the tie
// break: the first rule whose confidence clears the threshold wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "inspection-batch",
			Keywords:   []string{"inspect", "inspection", "audit all", "compliance", "baseline check", "all devices", "fleet"},
			Strategy:   StrategyInspection,
			Confidence: 0.95,
			Reasoning:  "batch inspection keyword matched",
		},
		{
			Name:       "single-show",
			Pattern:    regexp.MustCompile(`(?i)^\s*(show|list|get|display)\b`),
			Strategy:   StrategyFastPath,
			Confidence: 0.95,
			Reasoning:  "single read-only lookup",
		},
		{
			Name:       "diagnosis",
			Keywords:   []string{"why", "troubleshoot", "diagnose", "root cause", "investigate", "flapping", "intermittent"},
			Strategy:   StrategyDeepDive,
			Confidence: 0.9,
			Reasoning:  "diagnostic request needs a supervised multi-step plan",
		},
		{
			Name:       "config-change",
			Keywords:   []string{"configure", "delete", "remove", "apply", "set ", "change", "fix", "remediate", "rollback"},
			Strategy:   StrategyDeepDive,
			Confidence: 0.9,
			Reasoning:  "mutating request needs a supervised multi-step plan",
		},
	}
}
