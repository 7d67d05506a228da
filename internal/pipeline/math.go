package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	// Block math: $$...$$, possibly spanning lines, non-greedy.
	blockMathPattern = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)

	// Paragraph wrapper produced by full-document renderers.
	paragraphWrapperPattern = regexp.MustCompile(`^\s*<p>|</p>\s*$`)
)

// MathRenderer renders math snippets into markup.
// RenderFullDocument receives "$$...$$", RenderInlineFragment receives "$...$".
type MathRenderer interface {
	RenderFullDocument(ctx context.Context, markdown string) (string, error)
	RenderInlineFragment(ctx context.Context, markdown string) (string, error)
}

// preRenderMath replaces block then inline math with placeholders, recording
// the rendered markup in table. Inline math inside code spans is kept. A
// formula that fails to render keeps its original text; the rest of the
// document is still processed.
func (p *Preprocessor) preRenderMath(ctx context.Context, markdown string, table *FormulaTable) string {
	if p.Math == nil {
		return markdown
	}
	return mapCodeFreeSegments(markdown, func(segment string) string {
		segment = p.replaceBlockMath(ctx, segment, table)
		if !strings.Contains(segment, "$") {
			return segment
		}
		lines := strings.Split(segment, "\n")
		for i, line := range lines {
			lines[i] = mapOutsideInlineCode(line, func(text string) string {
				return p.replaceInlineMath(ctx, text, table)
			})
		}
		return strings.Join(lines, "\n")
	})
}

func (p *Preprocessor) replaceBlockMath(ctx context.Context, segment string, table *FormulaTable) string {
	return blockMathPattern.ReplaceAllStringFunc(segment, func(match string) string {
		rendered, err := p.Math.RenderFullDocument(ctx, match)
		if err != nil {
			p.logf("%v: block formula %q left as-is: %v", ErrFormulaRender, abbreviate(match), err)
			return match
		}
		placeholder := table.NextPlaceholder(true)
		table.Add(Formula{
			Placeholder: placeholder,
			Rendered:    strings.TrimSpace(paragraphWrapperPattern.ReplaceAllString(rendered, "")),
			Block:       true,
		})
		return placeholder
	})
}

func (p *Preprocessor) replaceInlineMath(ctx context.Context, segment string, table *FormulaTable) string {
	spans := findInlineMath(segment)
	if len(spans) == 0 {
		return segment
	}

	var sb strings.Builder
	cursor := 0
	for _, sp := range spans {
		match := segment[sp[0]:sp[1]]
		sb.WriteString(segment[cursor:sp[0]])
		cursor = sp[1]

		rendered, err := p.Math.RenderInlineFragment(ctx, match)
		if err != nil {
			p.logf("%v: inline formula %q left as-is: %v", ErrFormulaRender, abbreviate(match), err)
			sb.WriteString(match)
			continue
		}
		placeholder := table.NextPlaceholder(false)
		table.Add(Formula{
			Placeholder: placeholder,
			Rendered:    strings.TrimSpace(paragraphWrapperPattern.ReplaceAllString(rendered, "")),
		})
		sb.WriteString(placeholder)
	}
	sb.WriteString(segment[cursor:])
	return sb.String()
}

// findInlineMath returns [start, end) byte offsets of inline math spans.
//
// A span opens on a single '$' (not adjacent to another '$'), holds at least
// one character with no '$' or newline, and closes on the next '$', which must
// not be followed by another '$'. When the closing '$' is doubled the opening
// is abandoned and scanning resumes at the next byte.
func findInlineMath(s string) [][2]int {
	var spans [][2]int
	i := 0
	for i < len(s) {
		if s[i] != '$' || (i > 0 && s[i-1] == '$') || (i+1 < len(s) && s[i+1] == '$') {
			i++
			continue
		}
		end := -1
		for j := i + 1; j < len(s); j++ {
			if s[j] == '\n' {
				break
			}
			if s[j] == '$' {
				if j > i+1 && (j+1 >= len(s) || s[j+1] != '$') {
					end = j + 1
				}
				break
			}
		}
		if end < 0 {
			i++
			continue
		}
		spans = append(spans, [2]int{i, end})
		i = end
	}
	return spans
}

// abbreviate shortens s for log output.
func abbreviate(s string) string {
	const maxLen = 40
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
