package pipeline

import (
	"regexp"
	"strings"
)

var (
	// Code fence delimiter: up to 3 leading spaces, then 3+ backticks or tildes.
	fenceDelimiterPattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

	// Math fence delimiter: a line that is exactly $$, surrounding whitespace allowed.
	mathFenceDelimiterPattern = regexp.MustCompile(`^\s*\$\$\s*$`)

	// Quote prefix, possibly nested ("> > text").
	quotePrefixPattern = regexp.MustCompile(`^\s{0,3}(?:>\s?)+`)

	// List item marker at the start of a trimmed line.
	listItemPattern = regexp.MustCompile(`^(?:[*+-]|\d+[.)])\s+`)
)

// LineKind classifies one line of a scanned document.
type LineKind int

// Line kinds reported by the scanner.
const (
	LineText          LineKind = iota // ordinary line outside any fence
	LineCodeFence                     // code fence delimiter (opening, closing or nested)
	LineInCodeFence                   // content inside a code fence
	LineMathFence                     // $$ delimiter line outside code fences
	LineInMathFence                   // content inside a math fence
)

// Fenced reports whether a line belongs to a fenced region, delimiters included.
// Text transforms must leave such lines untouched.
func (k LineKind) Fenced() bool {
	return k != LineText
}

// String returns a short name for the kind.
func (k LineKind) String() string {
	switch k {
	case LineText:
		return "text"
	case LineCodeFence:
		return "code-fence"
	case LineInCodeFence:
		return "in-code-fence"
	case LineMathFence:
		return "math-fence"
	case LineInMathFence:
		return "in-math-fence"
	default:
		return "unknown"
	}
}

// Fence describes an open code fence.
type Fence struct {
	Marker byte // '`' or '~'
	Length int  // run length of the opening delimiter
}

// FenceState is the scanner state carried from line to line.
// A nil Code means no code fence is open.
type FenceState struct {
	Code   *Fence
	InMath bool
}

// parseFenceDelimiter returns the fence described by line, or nil when the
// line is not a code fence delimiter.
func parseFenceDelimiter(line string) *Fence {
	m := fenceDelimiterPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return &Fence{Marker: m[1][0], Length: len(m[1])}
}

// isMathFenceDelimiter reports whether line is a bare $$ line.
func isMathFenceDelimiter(line string) bool {
	return mathFenceDelimiterPattern.MatchString(line)
}

// Advance classifies line against the current state and moves the state forward.
//
// A delimiter opens a code fence when none is open. It closes the open fence
// only if it uses the same marker character and is at least as long as the
// opening run; any other delimiter inside a fence is content of that fence.
// Math fences toggle only while no code fence is open.
func (s *FenceState) Advance(line string) LineKind {
	if f := parseFenceDelimiter(line); f != nil {
		switch {
		case s.Code == nil && !s.InMath:
			s.Code = f
			return LineCodeFence
		case s.Code != nil && f.Marker == s.Code.Marker && f.Length >= s.Code.Length:
			s.Code = nil
			return LineCodeFence
		case s.Code != nil:
			return LineCodeFence
		}
		// Inside a math fence a backtick run is just math content.
		return LineInMathFence
	}

	if s.Code != nil {
		return LineInCodeFence
	}

	if isMathFenceDelimiter(line) {
		s.InMath = !s.InMath
		return LineMathFence
	}

	if s.InMath {
		return LineInMathFence
	}
	return LineText
}

// ScanLines classifies every line of lines in a single forward pass.
func ScanLines(lines []string) []LineKind {
	kinds := make([]LineKind, len(lines))
	var state FenceState
	for i, line := range lines {
		kinds[i] = state.Advance(line)
	}
	return kinds
}

// isQuoteLine reports whether line is part of a blockquote.
func isQuoteLine(line string) bool {
	return quotePrefixPattern.MatchString(line)
}

// stripQuotePrefix removes the blockquote markers from line.
func stripQuotePrefix(line string) string {
	return quotePrefixPattern.ReplaceAllString(line, "")
}

// isListItemLine reports whether the trimmed line starts a list item.
func isListItemLine(trimmed string) bool {
	return listItemPattern.MatchString(trimmed)
}

// mapTextLines applies fn to every line outside fenced regions and rejoins the document.
func mapTextLines(markdown string, fn func(line string) string) string {
	lines := strings.Split(markdown, "\n")
	kinds := ScanLines(lines)
	for i, line := range lines {
		if kinds[i].Fenced() {
			continue
		}
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

// mapCodeFreeSegments applies fn to each maximal run of lines outside code
// fences (math fences included) and rejoins the document. Used by transforms
// that span several lines, such as block math.
func mapCodeFreeSegments(markdown string, fn func(segment string) string) string {
	lines := strings.Split(markdown, "\n")
	kinds := ScanLines(lines)

	out := make([]string, 0, len(lines))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		out = append(out, strings.Split(fn(strings.Join(lines[start:end], "\n")), "\n")...)
		start = -1
	}

	for i, line := range lines {
		if kinds[i] == LineCodeFence || kinds[i] == LineInCodeFence {
			flush(i)
			out = append(out, line)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(lines))

	return strings.Join(out, "\n")
}
