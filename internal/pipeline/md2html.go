package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/frontmatter"

	"github.com/alnah/go-md2wechat/internal/yamlutil"
)

// ErrHTMLConversion indicates the legacy conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// First level-one ATX heading.
var titleHeadingPattern = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t#]*$`)

// frontmatterFormats are the blocks the frontmatter extender recognizes:
// "---" YAML decoded by yamlutil, and "+++" TOML.
var frontmatterFormats = []frontmatter.Format{
	{Name: "YAML", Delim: '-', Unmarshal: yamlutil.Decode},
	frontmatter.TOML,
}

// LegacyConverter is the self-contained markdown converter: soft breaks
// render as <br>, math goes through MathJax markup and frontmatter is
// dropped. It serves as the math-render capability of the preprocessor and
// as the fallback when the host renderer fails.
type LegacyConverter struct {
	md goldmark.Markdown
}

// NewLegacyConverter creates a LegacyConverter.
func NewLegacyConverter() *LegacyConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			mathjax.MathJax,
			&frontmatter.Extender{Formats: frontmatterFormats},
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			renderer.WithNodeRenderers(
				util.Prioritized(newSanitizingRenderer(), 100),
			),
		),
	)
	return &LegacyConverter{md: md}
}

// RenderFullDocument renders markdown as a whole document. A bare $$...$$
// formula is reshaped onto its own lines so it parses as display math.
func (c *LegacyConverter) RenderFullDocument(ctx context.Context, markdown string) (string, error) {
	out, err := convertWithContext(ctx, c.md, normalizeDisplayMath(markdown))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return out, nil
}

// RenderInlineFragment renders markdown and strips the enclosing paragraph.
func (c *LegacyConverter) RenderInlineFragment(ctx context.Context, markdown string) (string, error) {
	out, err := convertWithContext(ctx, c.md, markdown)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return strings.TrimSpace(paragraphWrapperPattern.ReplaceAllString(out, "")), nil
}

// StripFrontmatter removes a leading --- or +++ frontmatter block.
// An unclosed block is not frontmatter and is kept.
func (c *LegacyConverter) StripFrontmatter(markdown string) string {
	if _, end := c.findFrontmatter(markdown); end > 0 {
		return markdown[end:]
	}
	return markdown
}

// findFrontmatter parses markdown and returns the block the extender collected,
// with the offset just past its closing delimiter line. It returns nil, 0
// when the document has no closed frontmatter block.
func (c *LegacyConverter) findFrontmatter(markdown string) (*frontmatter.Data, int) {
	if !strings.HasPrefix(markdown, "---") && !strings.HasPrefix(markdown, "+++") {
		return nil, 0
	}
	pctx := parser.NewContext()
	c.md.Parser().Parse(text.NewReader([]byte(markdown)), parser.WithContext(pctx))
	data := frontmatter.Get(pctx)
	if data == nil {
		return nil, 0
	}
	end := frontmatterEnd(markdown)
	if end < 0 {
		return nil, 0
	}
	return data, end
}

// frontmatterEnd returns the offset past the line that repeats the opening
// delimiter line, or -1 when there is none.
func frontmatterEnd(markdown string) int {
	first, rest, ok := strings.Cut(markdown, "\n")
	if !ok {
		return -1
	}
	delim := strings.TrimSuffix(first, "\r")
	offset := len(first) + 1
	for {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimSuffix(line, "\r") == delim {
			if more {
				return offset + len(line) + 1
			}
			return offset + len(line)
		}
		if !more {
			return -1
		}
		offset += len(line) + 1
		rest = next
	}
}

// Convert renders a complete document wrapped in <section>.
func (c *LegacyConverter) Convert(ctx context.Context, markdown string) (string, error) {
	body, err := c.RenderFullDocument(ctx, c.StripFrontmatter(markdown))
	if err != nil {
		return "", err
	}
	return "<section>" + strings.TrimSpace(body) + "</section>", nil
}

// documentMeta is the frontmatter subset read by Title.
type documentMeta struct {
	Title string `yaml:"title" toml:"title"`
}

// Title returns the frontmatter title, else the first "# " heading, else "".
// Malformed frontmatter is ignored.
func (c *LegacyConverter) Title(markdown string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	if data, end := c.findFrontmatter(markdown); data != nil {
		var meta documentMeta
		if err := data.Decode(&meta); err == nil && strings.TrimSpace(meta.Title) != "" {
			return strings.TrimSpace(meta.Title)
		}
		markdown = markdown[end:]
	}

	lines := strings.Split(markdown, "\n")
	kinds := ScanLines(lines)
	for i, line := range lines {
		if kinds[i].Fenced() {
			continue
		}
		if m := titleHeadingPattern.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// normalizeDisplayMath puts the delimiters of a lone $$...$$ on their own lines.
func normalizeDisplayMath(markdown string) string {
	trimmed := strings.TrimSpace(markdown)
	if len(trimmed) < 4 || !strings.HasPrefix(trimmed, "$$") || !strings.HasSuffix(trimmed, "$$") {
		return markdown
	}
	inner := strings.TrimSpace(trimmed[2 : len(trimmed)-2])
	if inner == "" || strings.Contains(inner, "$$") {
		return markdown
	}
	return "$$\n" + inner + "\n$$\n"
}
