package intent

import "strings"

// Keyword tables for the deterministic fallback. Order matters only across
// tables: config beats diagnose beats query when multiple match as primary.
var (
	configKeywords = []string{
		"configure", "config", "set ", "delete", "remove", "shutdown",
		"no shutdown", "apply", "change", "update", "create", "add ",
		"enable", "disable", "fix", "remediate", "rollback", "commit",
	}
	diagnoseKeywords = []string{
		"why", "diagnose", "troubleshoot", "investigate", "debug",
		"root cause", "not working", "down", "flapping", "degraded",
		"slow", "drop", "analyz", "analys",
	}
	queryKeywords = []string{
		"show", "list", "get ", "display", "what is", "status",
		"check", "view", "describe", "count",
	}
)

// ClassifyKeywords is the deterministic keyword heuristic. It never fails:
// with no keyword match it defaults to query with confidence 0.5.
func ClassifyKeywords(text string) Intent {
	lower := strings.ToLower(text)

	hasConfig := matchesAny(lower, configKeywords)
	hasDiagnose := matchesAny(lower, diagnoseKeywords)
	hasQuery := matchesAny(lower, queryKeywords)

	out := Intent{
		Confidence: 0.5,
		Reasoning:  "keyword fallback: no category keyword matched, defaulting to query",
		Primary:    CategoryQuery,
	}

	switch {
	case hasConfig && hasDiagnose:
		out.Primary = CategoryDiagnose
		out.Secondary = CategoryConfig
		out.Confidence = 0.7
		out.Reasoning = "keyword fallback: diagnose and config keywords matched"
	case hasConfig:
		out.Primary = CategoryConfig
		out.Confidence = 0.7
		out.Reasoning = "keyword fallback: config keyword matched"
	case hasDiagnose:
		out.Primary = CategoryDiagnose
		out.Confidence = 0.7
		out.Reasoning = "keyword fallback: diagnose keyword matched"
	case hasQuery:
		out.Primary = CategoryQuery
		out.Confidence = 0.7
		out.Reasoning = "keyword fallback: query keyword matched"
	}

	out.normalize()
	return out
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
