package cleaner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

// convertLeadingStrongOrCode replaces the first meaningful <strong> or <code>
// of an item (looking through one leading paragraph) with a forced-inline
// span, so the editor cannot break the line after it.
func convertLeadingStrongOrCode(li *html.Node) {
	first := firstMeaningful(li)
	if dom.IsElement(first, "p") {
		first = firstMeaningful(first)
	}
	if !dom.IsElement(first, "strong", "code") {
		return
	}

	var extra dom.Style
	if first.Data == "code" && !inCodeBlock(first) {
		extra = inlineCodeStyle
	}
	span := dom.NewElement("span")
	dom.SetStyle(span, inlineStyle(dom.ElementStyle(first), extra))
	dom.MoveChildren(span, first)
	dom.ReplaceWith(first, span)
}

// healBreakAfterPrefix removes line breaks and raw newlines between a leading
// span/strong/code and the content after it. A joining space is inserted only
// when the characters on both sides are ASCII letters or digits.
func healBreakAfterPrefix(li *html.Node) {
	if hasDirectNestedList(li) {
		return
	}
	nodes := dom.Children(li)
	idx := -1
	for i, n := range nodes {
		if !dom.IsBlankText(n) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	prefix := nodes[idx]
	if !dom.IsElement(prefix, "span", "strong", "code") || isBlockWrapper(prefix) {
		return
	}
	prefixEndsAlnum := endsAlnum(strings.TrimSpace(dom.TextContent(prefix)))

	sawBreak := false
	for _, n := range nodes[idx+1:] {
		switch {
		case dom.IsElement(n, "br"):
			dom.Detach(n)
			sawBreak = true
		case dom.IsText(n):
			if dom.IsBlankText(n) {
				if strings.Contains(n.Data, "\n") {
					dom.Detach(n)
					sawBreak = true
				}
				continue
			}
			if !sawBreak && !hasLeadingNewline(n.Data) {
				return
			}
			rest := strings.TrimLeftFunc(n.Data, unicode.IsSpace)
			if prefixEndsAlnum && startsAlnum(rest) {
				rest = " " + rest
			}
			n.Data = rest
			return
		case n.Type == html.ElementNode:
			text := strings.TrimSpace(dom.TextContent(n))
			if text == "" {
				continue
			}
			if !sawBreak {
				return
			}
			if prefixEndsAlnum && startsAlnum(text) {
				li.InsertBefore(dom.NewText(" "), n)
			}
			return
		}
	}
}

// wrapTextContinuation puts the text following a leading span, strong or
// code into a forced-inline span, so the editor keeps it on the prefix line.
func wrapTextContinuation(li *html.Node) {
	if hasDirectNestedList(li) {
		return
	}
	kids := dom.MeaningfulChildren(li)
	if len(kids) < 2 {
		return
	}
	prefix, next := kids[0], kids[1]
	if !dom.IsElement(prefix, "span", "strong", "code") || isBlockWrapper(prefix) || isBundle(prefix) {
		return
	}
	if !dom.IsText(next) {
		return
	}
	span := dom.NewElement("span")
	dom.SetStyle(span, continuationStyle)
	dom.ReplaceWith(next, span)
	dom.Append(span, next)
}

// bundleShortLabel wraps two leading spans in a no-wrap inline block when the
// second is short and neither carries a colon, so the editor keeps them on one
// line. It reports whether a bundle was created.
func (c *Cleaner) bundleShortLabel(li *html.Node) bool {
	if c.shortLabelMaxRunes < 1 || hasDirectNestedList(li) {
		return false
	}
	kids := dom.MeaningfulChildren(li)
	if len(kids) < 2 {
		return false
	}
	first, second := kids[0], kids[1]
	if !dom.IsElement(first, "span") || !dom.IsElement(second, "span") {
		return false
	}
	if isBundle(first) || isBlockWrapper(first) || isBlockWrapper(second) {
		return false
	}

	firstText := strings.TrimSpace(dom.TextContent(first))
	secondText := strings.TrimSpace(dom.TextContent(second))
	if firstText == "" || secondText == "" {
		return false
	}
	if endsWithColon(firstText) || startsWithColon(secondText) {
		return false
	}
	if utf8.RuneCountInString(secondText) > c.shortLabelMaxRunes {
		return false
	}

	bundle := dom.NewElement("span")
	dom.SetStyle(bundle, bundleStyle)
	dom.InsertBefore(li, bundle, first)
	for n := first; n != nil; {
		next := n.NextSibling
		dom.Append(bundle, n)
		if n == second {
			break
		}
		n = next
	}
	return true
}

// wrapContentBeforeNestedList prepares an item that holds a nested list: its
// paragraph children are unwrapped, and the inline content before the first
// direct list is wrapped in a block span so the editor keeps it above the list.
func wrapContentBeforeNestedList(li *html.Node) {
	if len(dom.FindElements(li, "ul", "ol")) == 0 {
		return
	}
	for _, p := range directParagraphs(li) {
		if isPseudoItem(p) {
			continue
		}
		if prev := p.PrevSibling; prev != nil && !dom.IsBlankText(prev) && !isList(prev) {
			li.InsertBefore(dom.NewText(" "), p)
		}
		dom.Unwrap(p)
	}

	var list *html.Node
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			list = c
			break
		}
	}
	if list == nil {
		return
	}

	var before []*html.Node
	for c := li.FirstChild; c != list; c = c.NextSibling {
		before = append(before, c)
	}
	for len(before) > 0 && dom.IsBlankText(before[0]) {
		before = before[1:]
	}
	for len(before) > 0 && dom.IsBlankText(before[len(before)-1]) {
		before = before[:len(before)-1]
	}
	if len(before) == 0 || (len(before) == 1 && isBlockWrapper(before[0])) {
		return
	}
	for _, n := range before {
		if dom.IsElement(n, wrapperBlockTags...) {
			return
		}
	}

	wrapper := dom.NewElement("span")
	dom.SetStyle(wrapper, blockSpanStyle(li))
	dom.InsertBefore(li, wrapper, list)
	for _, n := range before {
		dom.Append(wrapper, n)
	}
}

// blockSpanStyle is the style of a block wrapper span inside li; it carries
// the item's line-height.
func blockSpanStyle(li *html.Node) dom.Style {
	style := dom.Style{
		{Property: "display", Value: "block"},
		{Property: "margin", Value: "0"},
		{Property: "padding", Value: "0"},
	}
	if lh, ok := dom.ElementStyle(li).Get("line-height"); ok {
		style = append(style, dom.Decl{Property: "line-height", Value: lh})
	}
	return style
}

// wrapLabelFlow moves the whole content of a colon-label item into one block
// span. Without it the editor starts a new line after the leading label.
func wrapLabelFlow(li *html.Node) {
	if hasDirectNestedList(li) {
		return
	}
	kids := dom.MeaningfulChildren(li)
	if len(kids) < 2 {
		return
	}
	first, second := kids[0], kids[1]
	if !dom.IsElement(first, "span") || isBlockWrapper(first) {
		return
	}
	if !endsWithColon(strings.TrimSpace(dom.TextContent(first))) && !startsWithColon(dom.TextContent(second)) {
		return
	}
	if containsFlowBlock(kids) {
		return
	}

	wrapper := dom.NewElement("span")
	dom.SetStyle(wrapper, blockSpanStyle(li))
	dom.MoveChildren(wrapper, li)
	for wrapper.FirstChild != nil && dom.IsBlankText(wrapper.FirstChild) {
		wrapper.RemoveChild(wrapper.FirstChild)
	}
	for wrapper.LastChild != nil && dom.IsBlankText(wrapper.LastChild) {
		wrapper.RemoveChild(wrapper.LastChild)
	}
	dom.Append(li, wrapper)
}
