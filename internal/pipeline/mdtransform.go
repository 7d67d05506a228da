package pipeline

import (
	"regexp"
	"strings"
)

// Highlight placeholders use Private Use Area characters so ==text== survives
// goldmark untouched; ConvertMarkPlaceholders turns them into <mark> after
// rendering. They are distinct from the formula delimiters.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

// Highlight syntax ==text==.
var highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)

// convertHighlights transforms ==text== to placeholder markers outside fenced
// regions and inline code.
func convertHighlights(content string) string {
	if !strings.Contains(content, "==") {
		return content
	}
	return mapTextLines(content, func(line string) string {
		if !strings.Contains(line, "==") {
			return line
		}
		return mapOutsideInlineCode(line, func(text string) string {
			return highlightPattern.ReplaceAllString(text, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
		})
	})
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	if !strings.Contains(content, MarkStartPlaceholder) {
		return content
	}
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
