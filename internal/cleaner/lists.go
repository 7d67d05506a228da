package cleaner

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

// resetNestedListMargins replaces the margins of lists nested directly in an
// item with a zero margin.
func resetNestedListMargins(root *html.Node) {
	for _, list := range dom.FindElements(root, "ul", "ol") {
		if !dom.IsElement(list.Parent, "li") {
			continue
		}
		rest := dom.ElementStyle(list).Without(func(prop string) bool {
			return strings.HasPrefix(prop, "margin")
		})
		style := append(dom.Style{{Property: "margin", Value: "0"}}, rest...)
		dom.SetStyle(list, style)
	}
}

// pruneEmptyItems removes items with no text, image or nested list.
func pruneEmptyItems(root *html.Node) {
	for _, li := range dom.FindElements(root, "li") {
		if strings.TrimSpace(dom.TextContent(li)) != "" {
			continue
		}
		if len(dom.FindElements(li, "img", "ul", "ol")) > 0 {
			continue
		}
		dom.Detach(li)
	}
}

// stripListWhitespace drops whitespace-only text directly inside lists and
// items. Inside an item, a space-only run between two inline nodes is a word
// separator and stays.
func stripListWhitespace(root *html.Node) {
	for _, n := range dom.FindElements(root, "ul", "ol", "li") {
		item := n.Data == "li"
		for _, c := range dom.Children(n) {
			if !dom.IsBlankText(c) {
				continue
			}
			if item && !strings.Contains(c.Data, "\n") && c.PrevSibling != nil && c.NextSibling != nil {
				continue
			}
			dom.Detach(c)
		}
	}
}

// forceInlineInItems keeps every <strong> and inline <code> inside an item on
// the line, whatever the editor stylesheet says.
func forceInlineInItems(root *html.Node) {
	inItem := func(n *html.Node) bool {
		return dom.Closest(n, func(p *html.Node) bool { return dom.IsElement(p, "li") }) != nil
	}
	for _, el := range dom.FindElements(root, "strong", "code") {
		if !inItem(el) {
			continue
		}
		var extra dom.Style
		if el.Data == "code" {
			if inCodeBlock(el) {
				continue
			}
			extra = inlineCodeStyle
		}
		dom.SetStyle(el, inlineStyle(dom.ElementStyle(el), extra))
	}
}
