package pipeline

import (
	"regexp"
	"strings"
)

var (
	// Tag-like markup: <name ...>, </name>, <name/>.
	pseudoTagPattern = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9-]*)(?:\s[^<>]*)?/?>`)

	// Markdown link with a script-capable or inline-data scheme.
	unsafeLinkPattern = regexp.MustCompile(`(?i)\[[^\]]+\]\(((?:javascript|vbscript|data):[^)\r\n]*)\)`)

	// Plain wikilink, captured with the character before it.
	plainWikilinkPattern = regexp.MustCompile(`(^|[^!\\])(\[\[[^\[\]\r\n]+?\]\])`)
)

// DefaultKnownTags lists the HTML element names passed through as raw HTML.
// Any other tag-like text (<T>, <placeholder>, </foo>) is escaped so it stays
// visible instead of disappearing into the rendered DOM.
var DefaultKnownTags = []string{
	"a", "abbr", "address", "area", "article", "aside", "audio",
	"b", "bdi", "bdo", "blockquote", "br", "button",
	"caption", "center", "cite", "code", "col", "colgroup",
	"data", "dd", "del", "details", "dfn", "div", "dl", "dt",
	"em", "embed",
	"figcaption", "figure", "font", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "header", "hr",
	"i", "iframe", "img", "input", "ins",
	"kbd", "label", "legend", "li",
	"main", "map", "mark", "meter",
	"nav", "nobr", "ol", "optgroup", "option", "output",
	"p", "picture", "pre", "progress",
	"q", "rp", "rt", "ruby",
	"s", "samp", "section", "select", "small", "source", "span", "strike", "strong", "sub", "summary", "sup", "svg",
	"table", "tbody", "td", "textarea", "tfoot", "th", "thead", "time", "tr", "track", "tt",
	"u", "ul", "var", "video", "wbr",
}

// tagSet builds a lookup set from tag names, lower-cased.
func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return set
}

// inlineSegment is a piece of one line, either inline code or plain text.
type inlineSegment struct {
	text string
	code bool
}

// splitInlineCode splits line into plain text and inline-code spans.
// A span opens on a backtick run and closes on the next run of the same
// length; an opening run with no matching close is plain text.
func splitInlineCode(line string) []inlineSegment {
	if !strings.Contains(line, "`") {
		return []inlineSegment{{text: line}}
	}

	var segs []inlineSegment
	textStart := 0
	i := 0
	for i < len(line) {
		if line[i] != '`' {
			i++
			continue
		}
		open := backtickRun(line, i)
		closeAt := -1
		for j := i + open; j < len(line); {
			if line[j] != '`' {
				j++
				continue
			}
			run := backtickRun(line, j)
			if run == open {
				closeAt = j
				break
			}
			j += run
		}
		if closeAt < 0 {
			i += open
			continue
		}
		if textStart < i {
			segs = append(segs, inlineSegment{text: line[textStart:i]})
		}
		end := closeAt + open
		segs = append(segs, inlineSegment{text: line[i:end], code: true})
		i = end
		textStart = end
	}
	if textStart < len(line) {
		segs = append(segs, inlineSegment{text: line[textStart:]})
	}
	return segs
}

// backtickRun returns the length of the backtick run starting at i.
func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// mapOutsideInlineCode applies fn to the plain-text segments of line.
func mapOutsideInlineCode(line string, fn func(string) string) string {
	segs := splitInlineCode(line)
	if len(segs) == 1 && !segs[0].code {
		return fn(line)
	}
	var sb strings.Builder
	for _, seg := range segs {
		if seg.code {
			sb.WriteString(seg.text)
			continue
		}
		sb.WriteString(fn(seg.text))
	}
	return sb.String()
}

// EscapePseudoHTML escapes tag-like text whose name is not in known.
// Fenced regions and inline code spans are left untouched.
func EscapePseudoHTML(markdown string, known map[string]bool) string {
	if !strings.Contains(markdown, "<") {
		return markdown
	}
	return mapTextLines(markdown, func(line string) string {
		if !strings.Contains(line, "<") {
			return line
		}
		return mapOutsideInlineCode(line, func(text string) string {
			return escapeUnknownTags(text, known)
		})
	})
}

func escapeUnknownTags(text string, known map[string]bool) string {
	return pseudoTagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		name := pseudoTagPattern.FindStringSubmatch(tag)[1]
		if known[strings.ToLower(name)] {
			return tag
		}
		return "&lt;" + tag[1:len(tag)-1] + "&gt;"
	})
}

// NeutralizeUnsafeLinks turns [text](javascript:...), vbscript: and data:
// links into literal text by escaping the opening bracket. Image syntax and
// already-escaped links are kept.
func NeutralizeUnsafeLinks(markdown string) string {
	if !strings.Contains(markdown, "](") {
		return markdown
	}
	return mapTextLines(markdown, func(line string) string {
		if !strings.Contains(line, "](") {
			return line
		}
		return mapOutsideInlineCode(line, escapeUnsafeLinks)
	})
}

func escapeUnsafeLinks(text string) string {
	locs := unsafeLinkPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var sb strings.Builder
	cursor := 0
	for _, loc := range locs {
		sb.WriteString(text[cursor:loc[0]])
		if loc[0] == 0 || (text[loc[0]-1] != '!' && text[loc[0]-1] != '\\') {
			sb.WriteByte('\\')
		}
		sb.WriteString(text[loc[0]:loc[1]])
		cursor = loc[1]
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

// NeutralizePlainWikilinks escapes [[target]] references so the host renderer
// keeps them as text. Image embeds (![[...]]), fenced regions and inline code
// spans are left untouched.
func NeutralizePlainWikilinks(markdown string) string {
	if !strings.Contains(markdown, "[[") {
		return markdown
	}
	return mapTextLines(markdown, func(line string) string {
		if !strings.Contains(line, "[[") {
			return line
		}
		return mapOutsideInlineCode(line, func(text string) string {
			return plainWikilinkPattern.ReplaceAllString(text, `$1\$2`)
		})
	})
}
