package llm

import (
	"regexp"
	"strings"
)

var (
	bulletRe     = regexp.MustCompile(`(?m)^[-*]\s`)
	numberedRe   = regexp.MustCompile(`(?m)^\d+\.\s`)
	blankLinesRe = regexp.MustCompile(`\n\n+`)
)

// severityMarkers open each briefing section.
var severityMarkers = []string{"🔴", "🟡", "🟢"}

// CleanResponse strips any preamble before the first severity marker,
// normalizes list bullets to "• " and collapses blank lines.
func CleanResponse(text string) string {
	first := -1
	for _, m := range severityMarkers {
		if i := strings.Index(text, m); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	if first > 0 {
		text = text[first:]
	}

	text = bulletRe.ReplaceAllString(text, "• ")
	text = numberedRe.ReplaceAllString(text, "• ")
	text = blankLinesRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// HasSeverityMarkers reports whether text follows the sectioned format.
func HasSeverityMarkers(text string) bool {
	for _, m := range severityMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
