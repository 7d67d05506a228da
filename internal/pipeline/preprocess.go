package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	// Indentation before a line-starting $$.
	mathIndentPattern = regexp.MustCompile(`^[ \t]+(\$\$)`)

	// Embed-bracket image: ![[path]] or ![[path|alias]].
	embedImagePattern = regexp.MustCompile(`!\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)
)

// FrontmatterStripper removes a leading frontmatter block.
type FrontmatterStripper interface {
	StripFrontmatter(markdown string) string
}

// Logger receives diagnostic messages in printf style.
type Logger func(format string, args ...any)

// Preprocessor prepares markdown for a host renderer.
// A Preprocessor holds no per-call state and is safe for concurrent use.
type Preprocessor struct {
	Frontmatter FrontmatterStripper // nil leaves frontmatter in place
	Math        MathRenderer        // nil disables math pre-rendering
	KnownTags   map[string]bool     // nil means DefaultKnownTags
	Logger      Logger              // nil discards messages
}

// Prepared is the output of one Preprocess call.
type Prepared struct {
	Markdown string
	Formulas *FormulaTable
}

// NewPreprocessor returns a Preprocessor with the default tag allow-list.
func NewPreprocessor(frontmatter FrontmatterStripper, math MathRenderer) *Preprocessor {
	return &Preprocessor{
		Frontmatter: frontmatter,
		Math:        math,
		KnownTags:   tagSet(DefaultKnownTags),
	}
}

// SetKnownTags replaces the tag allow-list used by pseudo-HTML escaping.
func (p *Preprocessor) SetKnownTags(tags []string) {
	p.KnownTags = tagSet(tags)
}

func (p *Preprocessor) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger(format, args...)
	}
}

func (p *Preprocessor) knownTags() map[string]bool {
	if p.KnownTags == nil {
		return tagSet(DefaultKnownTags)
	}
	return p.KnownTags
}

// Preprocess runs the ordered preprocessing passes over one document and
// returns the prepared markdown with a formula table owned by this call.
//
// Passes:
//  1. strip indentation before line-starting $$
//  2. rewrite ![[path|alias]] into ![alias](encoded-path)
//  3. strip frontmatter
//  4. pre-render block then inline math into placeholders
//  5. escape unknown tag-like text
//  6. neutralize javascript:/vbscript:/data: links
//  7. neutralize plain [[wikilinks]]
//  8. inject hard breaks
//
// Individual failures never abort the document.
func (p *Preprocessor) Preprocess(ctx context.Context, markdown string) Prepared {
	table := NewFormulaTable()

	md := strings.ReplaceAll(markdown, "\r\n", "\n")
	md = stripMathIndent(md)
	md = RewriteEmbedImages(md)
	if p.Frontmatter != nil {
		md = p.Frontmatter.StripFrontmatter(md)
	}
	md = p.preRenderMath(ctx, md, table)
	md = EscapePseudoHTML(md, p.knownTags())
	md = NeutralizeUnsafeLinks(md)
	md = NeutralizePlainWikilinks(md)
	md = InjectHardBreaks(md)

	return Prepared{Markdown: md, Formulas: table}
}

// stripMathIndent removes leading blanks before a line-starting $$ outside code fences.
func stripMathIndent(markdown string) string {
	if !strings.Contains(markdown, "$$") {
		return markdown
	}
	lines := strings.Split(markdown, "\n")
	kinds := ScanLines(lines)
	for i, line := range lines {
		if kinds[i] == LineCodeFence || kinds[i] == LineInCodeFence {
			continue
		}
		lines[i] = mathIndentPattern.ReplaceAllString(line, "$1")
	}
	return strings.Join(lines, "\n")
}

// RewriteEmbedImages rewrites ![[path|alias]] into ![alias](path), the path
// percent-encoded. Without an alias the alt text is empty.
func RewriteEmbedImages(markdown string) string {
	if !strings.Contains(markdown, "![[") {
		return markdown
	}
	return mapTextLines(markdown, func(line string) string {
		if !strings.Contains(line, "![[") {
			return line
		}
		return mapOutsideInlineCode(line, func(text string) string {
			return embedImagePattern.ReplaceAllStringFunc(text, func(m string) string {
				sub := embedImagePattern.FindStringSubmatch(m)
				alt := strings.TrimSpace(sub[2])
				return "![" + alt + "](" + encodeURI(strings.TrimSpace(sub[1])) + ")"
			})
		})
	})
}

// uriReserved lists the characters encodeURI leaves as-is besides ASCII letters and digits.
const uriReserved = ";,/?:@&=+$-_.!~*'()#"

// encodeURI percent-encodes s the way browsers encode a whole URI: reserved
// and unreserved characters stay literal, everything else becomes UTF-8 %XX.
// url.PathEscape also escapes ';', ',', '?', '#' and '$', so it does not fit.
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			sb.WriteByte(c)
		case strings.IndexByte(uriReserved, c) >= 0:
			sb.WriteByte(c)
		default:
			sb.WriteByte('%')
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0x0f])
		}
	}
	return sb.String()
}
