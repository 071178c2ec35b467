package llm

import (
	"regexp"
	"strings"
)

// fenceRe matches a markdown code fence with an optional language tag.
var fenceRe = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// Unfence returns the payload of a completion. Chat models often wrap
// structured output in markdown code fences even when asked not to; when a
// fenced block is present its content is returned (preferring a block
// tagged json), otherwise the trimmed response is returned as-is.
func Unfence(response string) string {
	matches := fenceRe.FindAllStringSubmatch(response, -1)

	var first string
	for _, match := range matches {
		if len(match) < 3 {
			continue
		}
		content := strings.TrimSpace(match[2])
		if content == "" {
			continue
		}
		if match[1] == "json" {
			return content
		}
		if first == "" {
			first = content
		}
	}

	if first != "" {
		return first
	}
	return strings.TrimSpace(response)
}
