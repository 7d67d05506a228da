package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	xhtml "golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

// Embed placeholder markup emitted for images that are not remote or data URLs.
const (
	embedClass   = "internal-embed image-embed"
	embedSrcAttr = "src"
)

// GoldmarkHost is the default host renderer. It renders markdown with goldmark
// into the target subtree and resolves local images asynchronously: they are
// first emitted as unresolved embed placeholders, then filled with an <img>
// once the EmbedResolver answers.
type GoldmarkHost struct {
	md       goldmark.Markdown
	Resolver EmbedResolver // nil inserts <img> with the original src
	Logger   Logger
}

// NewGoldmarkHost creates a GoldmarkHost with GFM, footnotes, inline-styled
// code highlighting and sanitized raw HTML.
func NewGoldmarkHost(resolver EmbedResolver) *GoldmarkHost {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // the editor drops class-based styling
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			renderer.WithNodeRenderers(
				util.Prioritized(embedImageRenderer{}, 100),
				util.Prioritized(newSanitizingRenderer(), 100),
			),
		),
	)
	return &GoldmarkHost{md: md, Resolver: resolver}
}

// newRawHTMLPolicy allows user-generated markup plus the inline styling and
// classes the editor understands.
func newRawHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowStyles(
		"color", "background-color", "font-size", "font-weight", "font-style",
		"text-align", "text-decoration", "line-height", "margin", "padding",
	).Globally()
	return p
}

func (h *GoldmarkHost) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger(format, args...)
	}
}

// RenderInto implements IntoRenderer. It returns once the markup is in target;
// embed resolution continues in the background and mutates target through
// Subtree.Update.
func (h *GoldmarkHost) RenderInto(ctx context.Context, markdown string, target *dom.Subtree, sourcePath string, _ *Scope) error {
	if target == nil {
		return fmt.Errorf("%w: nil render target", ErrConfiguration)
	}
	out, err := convertWithContext(ctx, h.md, convertHighlights(markdown))
	if err != nil {
		return err
	}
	if err := target.SetInnerHTML(ConvertMarkPlaceholders(out)); err != nil {
		return fmt.Errorf("parsing rendered markup: %w", err)
	}

	var pending []string
	target.View(func(root *xhtml.Node) {
		for _, n := range dom.FindAll(root, isUnresolvedEmbed) {
			src, _ := dom.Attr(n, embedSrcAttr)
			pending = append(pending, src)
		}
	})
	if len(pending) > 0 {
		go h.resolveEmbeds(context.WithoutCancel(ctx), target, sourcePath, pending)
	}
	return nil
}

// resolveEmbeds resolves each pending embed source and inserts the image.
func (h *GoldmarkHost) resolveEmbeds(ctx context.Context, target *dom.Subtree, sourcePath string, sources []string) {
	resolved := make(map[string]string, len(sources))
	for _, src := range sources {
		if _, ok := resolved[src]; ok {
			continue
		}
		url := src
		if h.Resolver != nil {
			u, err := h.Resolver.Resolve(ctx, src, sourcePath)
			if err != nil {
				h.logf("embed %q not resolved: %v", src, err)
			} else {
				url = u
			}
		}
		resolved[src] = url
	}

	target.Update(func(root *xhtml.Node) {
		for _, n := range dom.FindAll(root, isUnresolvedEmbed) {
			src, _ := dom.Attr(n, embedSrcAttr)
			url, ok := resolved[src]
			if !ok {
				continue
			}
			alt, _ := dom.Attr(n, "alt")
			n.AppendChild(dom.NewElement("img",
				xhtml.Attribute{Key: "src", Val: url},
				xhtml.Attribute{Key: "alt", Val: alt},
			))
		}
	})
}

// convertWithContext runs goldmark in a goroutine so the caller can abandon
// it on cancellation; goldmark itself does not take a context.
func convertWithContext(ctx context.Context, md goldmark.Markdown, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("markdown conversion: %w", err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// embedImageRenderer emits <img> for remote and data URLs and an unresolved
// embed placeholder for anything else.
type embedImageRenderer struct{}

// RegisterFuncs implements renderer.NodeRenderer.
func (r embedImageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

func (r embedImageRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	dest := string(n.Destination)
	alt := util.EscapeHTML([]byte(altText(n, source)))

	if IsRemoteOrDataURL(dest) {
		_, _ = w.WriteString(`<img src="`)
		if !html.IsDangerousURL(n.Destination) {
			_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
		}
		_, _ = w.WriteString(`" alt="`)
		_, _ = w.Write(alt)
		_, _ = w.WriteString(`" />`)
		return ast.WalkSkipChildren, nil
	}

	if html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(alt)
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<span class="` + embedClass + `" ` + embedSrcAttr + `="`)
	_, _ = w.Write(util.EscapeHTML([]byte(dest)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(alt)
	_, _ = w.WriteString(`"></span>`)
	return ast.WalkSkipChildren, nil
}

// sanitizingRenderer passes raw HTML through bluemonday instead of dropping it.
type sanitizingRenderer struct {
	policy *bluemonday.Policy
}

func newSanitizingRenderer() *sanitizingRenderer {
	return &sanitizingRenderer{policy: newRawHTMLPolicy()}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *sanitizingRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

// renderHTMLBlock writes a raw HTML block, sanitized as a whole.
func (r *sanitizingRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.HTMLBlock)
	var raw bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw.Write(seg.Value(source))
	}
	if n.HasClosure() {
		raw.Write(n.ClosureLine.Value(source))
	}
	_, _ = w.Write(r.policy.SanitizeBytes(raw.Bytes()))
	return ast.WalkContinue, nil
}

// renderRawHTML writes an inline tag, sanitized on its own.
func (r *sanitizingRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	var raw bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		raw.Write(seg.Value(source))
	}
	_, _ = w.Write(r.policy.SanitizeBytes(raw.Bytes()))
	return ast.WalkSkipChildren, nil
}

// altText collects the plain text of an image's label.
func altText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(altText(c, source))
		}
	}
	return sb.String()
}
