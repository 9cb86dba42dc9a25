package metrics

import (
	"regexp"
	"strings"
)

var (
	parenGroup  = regexp.MustCompile(`\(.*?\)`)
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeKey folds a metric key to its comparable form: lower-cased,
// parenthesized groups removed, non-alphanumeric runs collapsed to "_" and
// outer underscores trimmed. "Factual_Correctness(mode=f1)" becomes
// "factual_correctness".
func NormalizeKey(key string) string {
	folded := strings.ToLower(key)
	folded = parenGroup.ReplaceAllString(folded, "")
	folded = nonAlnumRun.ReplaceAllString(folded, "_")
	return strings.Trim(folded, "_")
}

// keysMatch reports whether two normalized keys refer to the same metric:
// equal, or one contains the other. Empty keys never match.
func keysMatch(candidate, target string) bool {
	if candidate == "" || target == "" {
		return false
	}
	return candidate == target ||
		strings.Contains(candidate, target) ||
		strings.Contains(target, candidate)
}
