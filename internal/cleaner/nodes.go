package cleaner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

// Tags that make a paragraph more than an inline flow.
var paragraphBlockTags = []string{"ul", "ol", "table", "pre", "blockquote", "section", "figure", "div", "p"}

// Tags that keep leading item content from being wrapped in a block span.
var wrapperBlockTags = []string{"ul", "ol", "table", "pre", "blockquote", "section", "figure", "div"}

// Tags that would close an enclosing <p> when the markup is parsed again.
var flowBlockTags = []string{
	"address", "article", "aside", "blockquote", "details", "dialog", "div", "dl",
	"fieldset", "figcaption", "figure", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "header", "hgroup", "hr",
	"main", "menu", "nav", "ol", "p", "pre", "section", "table", "ul",
}

// Pseudo-item margin: "0 0 4px <indent>px".
var pseudoItemMarginPattern = regexp.MustCompile(`^0 0 4px [0-9]+px$`)

var (
	forcedInlineStyle = dom.Style{
		{Property: "display", Value: "inline !important"},
		{Property: "width", Value: "auto !important"},
		{Property: "float", Value: "none !important"},
	}
	inlineCodeStyle = dom.Style{
		{Property: "margin", Value: "0 2px !important"},
		{Property: "vertical-align", Value: "baseline"},
	}
	continuationStyle = dom.Style{
		{Property: "display", Value: "inline !important"},
	}
	bundleStyle = dom.Style{
		{Property: "display", Value: "inline-block"},
		{Property: "white-space", Value: "nowrap"},
	}
)

func isList(n *html.Node) bool {
	return dom.IsElement(n, "ul", "ol")
}

// hasDirectNestedList reports whether li has a <ul> or <ol> child.
func hasDirectNestedList(li *html.Node) bool {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			return true
		}
	}
	return false
}

// directParagraphs returns the <p> children of n.
func directParagraphs(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, "p") {
			out = append(out, c)
		}
	}
	return out
}

// firstMeaningful returns the first child of n that is not whitespace-only text.
func firstMeaningful(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !dom.IsBlankText(c) {
			return c
		}
	}
	return nil
}

// isInlineOnly reports whether p holds no block-level descendants.
func isInlineOnly(p *html.Node) bool {
	return !dom.HasDescendant(p, func(c *html.Node) bool {
		return dom.IsElement(c, paragraphBlockTags...)
	})
}

// containsFlowBlock reports whether any node is, or contains, a block that
// cannot live inside <p>.
func containsFlowBlock(nodes []*html.Node) bool {
	isBlock := func(c *html.Node) bool { return dom.IsElement(c, flowBlockTags...) }
	for _, n := range nodes {
		if isBlock(n) || dom.HasDescendant(n, isBlock) {
			return true
		}
	}
	return false
}

// isBlockWrapper reports whether n is a span laid out as a block, as produced
// for item content preceding a nested list.
func isBlockWrapper(n *html.Node) bool {
	if !dom.IsElement(n, "span") {
		return false
	}
	v, _ := dom.ElementStyle(n).Get("display")
	return v == "block"
}

// isBundle reports whether n is a no-wrap bundle of two leading spans.
func isBundle(n *html.Node) bool {
	if !dom.IsElement(n, "span") {
		return false
	}
	v, _ := dom.ElementStyle(n).Get("white-space")
	return v == "nowrap"
}

// isPseudoItem reports whether n is a paragraph produced by list flattening.
func isPseudoItem(n *html.Node) bool {
	if !dom.IsElement(n, "p", "section") {
		return false
	}
	s := dom.ElementStyle(n)
	margin, _ := s.Get("margin")
	padding, _ := s.Get("padding")
	return padding == "0" && pseudoItemMarginPattern.MatchString(margin)
}

// inCodeBlock reports whether n sits inside a code block.
func inCodeBlock(n *html.Node) bool {
	return dom.Closest(n, func(p *html.Node) bool {
		return dom.IsElement(p, "pre") || dom.HasClass(p, "code-block") || dom.HasClass(p, "code-block-code")
	}) != nil
}

// inlineStyle strips display, width and float from s (and any property extra
// sets), then appends the forced-inline declarations followed by extra.
func inlineStyle(s dom.Style, extra dom.Style) dom.Style {
	drop := []string{"display", "width", "float"}
	for _, d := range extra {
		drop = append(drop, d.Property)
	}
	out := s.WithoutProps(drop...)
	out = append(out, forcedInlineStyle...)
	return append(out, extra...)
}

func isColon(r rune) bool {
	return r == ':' || r == '：'
}

// endsWithColon reports whether trimmed text ends with an ASCII or full-width colon.
func endsWithColon(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimRightFunc(s, unicode.IsSpace))
	return isColon(r)
}

// startsWithColon reports whether s starts with a colon after optional whitespace.
func startsWithColon(s string) bool {
	r, _ := utf8.DecodeRuneInString(strings.TrimLeftFunc(s, unicode.IsSpace))
	return isColon(r)
}

func isAlnum(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// endsAlnum reports whether s ends with an ASCII letter or digit.
func endsAlnum(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return isAlnum(r)
}

// startsAlnum reports whether s starts with an ASCII letter or digit.
func startsAlnum(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isAlnum(r)
}

// hasLeadingNewline reports whether s starts with a newline after spaces or tabs.
func hasLeadingNewline(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, " \t"), "\n")
}
