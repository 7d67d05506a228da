package pipeline

import (
	"regexp"
	"strings"
)

// HardBreakMarker is appended to a line to force a line break in the host
// renderer, matching the legacy converter which treats every newline as <br>.
const HardBreakMarker = "<br>"

var (
	headingLinePattern       = regexp.MustCompile(`^#{1,6}\s`)
	trailingBreakPattern     = regexp.MustCompile(`(?i)<br\s*/?>\s*$`)
	trailingTwoSpacesPattern = regexp.MustCompile(`[ \t]{2,}$`)
	calloutPattern           = regexp.MustCompile(`^\[!`)
)

// isThematicBreak reports whether trimmed is a ---, *** or ___ line.
// Go regexp has no backreferences, so the marker is compared by hand.
func isThematicBreak(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	marker := trimmed[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// startsNewBlock reports whether trimmed opens a block of its own
// (heading, quote, thematic break, list item, table row, raw HTML, fence).
// Empty lines count as block boundaries.
func startsNewBlock(trimmed string) bool {
	switch {
	case trimmed == "":
		return true
	case headingLinePattern.MatchString(trimmed):
		return true
	case strings.HasPrefix(trimmed, ">"):
		return true
	case isThematicBreak(trimmed):
		return true
	case isListItemLine(trimmed):
		return true
	case strings.HasPrefix(trimmed, "|"):
		return true
	case strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">"):
		return true
	case parseFenceDelimiter(trimmed) != nil:
		return true
	}
	return false
}

func appendHardBreak(line string) string {
	if line == "" || trailingBreakPattern.MatchString(line) {
		return line
	}
	return strings.TrimRight(line, " \t") + HardBreakMarker
}

func appendQuoteJoin(line string) string {
	if line == "" || strings.HasSuffix(strings.TrimRight(line, " \t"), `\`) {
		return line
	}
	return strings.TrimRight(line, " \t") + `\`
}

// InjectHardBreaks makes soft line breaks render as breaks in hosts that
// follow CommonMark, matching the legacy converter.
//
// For each non-final line outside fences:
//   - lines already ending in two spaces or a backslash are kept;
//   - two consecutive quote lines with content (not callout headers) are
//     joined by a trailing backslash;
//   - lines opening a block (other than list items), and lines followed by a
//     line that opens a block, are kept;
//   - every other line gets HardBreakMarker.
func InjectHardBreaks(markdown string) string {
	lines := strings.Split(markdown, "\n")
	kinds := ScanLines(lines)

	for i := 0; i < len(lines)-1; i++ {
		if kinds[i].Fenced() {
			continue
		}
		line, next := lines[i], lines[i+1]
		if line == "" || next == "" {
			continue
		}
		if trailingTwoSpacesPattern.MatchString(line) || strings.HasSuffix(line, `\`) {
			continue
		}

		if isQuoteLine(line) && isQuoteLine(next) {
			current := strings.TrimSpace(stripQuotePrefix(line))
			following := strings.TrimSpace(stripQuotePrefix(next))
			if current == "" || following == "" {
				continue
			}
			if calloutPattern.MatchString(current) || calloutPattern.MatchString(following) {
				continue
			}
			lines[i] = appendQuoteJoin(line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if startsNewBlock(trimmed) && !isListItemLine(trimmed) {
			continue
		}
		if startsNewBlock(strings.TrimSpace(next)) {
			continue
		}
		lines[i] = appendHardBreak(line)
	}

	return strings.Join(lines, "\n")
}
