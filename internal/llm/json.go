package llm

import (
	"regexp"
	"strings"
)

var (
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSONObject locates the first top-level {...} object in free text.
// Models wrap their JSON in prose and markdown fences, so the match is greedy:
// first opening brace to last closing brace. Returns ok=false when the text
// holds no object.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// RepairJSON fixes the malformations local models emit most often, currently
// trailing commas before a closing brace or bracket.
func RepairJSON(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}
