package cleaner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

// labelPrefix locates a "label:" prefix among the children of a container.
type labelPrefix struct {
	nodes []*html.Node // children snapshot
	first int          // index of the <strong>/<code> label
	end   int          // index of the last prefix node: first, or the colon text after it
}

// findLabelPrefix detects a leading <strong> or <code> whose text ends with a
// colon, or that is directly followed by text starting with a colon. Only
// whitespace may precede the label.
func findLabelPrefix(container *html.Node) (labelPrefix, bool) {
	nodes := dom.Children(container)
	first := -1
	for i, n := range nodes {
		if n.Type == html.ElementNode {
			first = i
			break
		}
		if !dom.IsBlankText(n) {
			return labelPrefix{}, false
		}
	}
	if first < 0 || !dom.IsElement(nodes[first], "strong", "code") {
		return labelPrefix{}, false
	}

	lp := labelPrefix{nodes: nodes, first: first, end: first}
	if endsWithColon(strings.TrimSpace(dom.TextContent(nodes[first]))) {
		return lp, true
	}
	if first+1 < len(nodes) && dom.IsText(nodes[first+1]) && startsWithColon(nodes[first+1].Data) {
		lp.end = first + 1
		return lp, true
	}
	return labelPrefix{}, false
}

// normalizeColon rewrites "  ：  body" as "： body".
func normalizeColon(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	_, size := utf8.DecodeRuneInString(s)
	return s[:size] + " " + strings.TrimLeftFunc(s[size:], unicode.IsSpace)
}

// collapseLabelBreak joins a "label: <br> body" container onto one line.
//
// Line breaks between the prefix and the first content node are removed.
// When the colon sits in its own text node it is normalized to "colon +
// space", and the body follows it directly; otherwise a body separated by a
// break or leading whitespace gets exactly one space. Content after the first
// non-empty node is left as is.
func collapseLabelBreak(container *html.Node) {
	lp, ok := findLabelPrefix(container)
	if !ok {
		return
	}

	spaced := false
	if lp.end > lp.first {
		colon := lp.nodes[lp.end]
		colon.Data = normalizeColon(colon.Data)
		spaced = true
	}

	sawBreak := false
	for _, n := range lp.nodes[lp.end+1:] {
		switch {
		case dom.IsElement(n, "br"):
			dom.Detach(n)
			sawBreak = true
		case dom.IsText(n):
			if dom.IsBlankText(n) {
				continue
			}
			rest := strings.TrimLeftFunc(n.Data, unicode.IsSpace)
			if !sawBreak && rest == n.Data {
				return
			}
			if spaced {
				n.Data = rest
			} else {
				n.Data = " " + rest
			}
			return
		case n.Type == html.ElementNode:
			if sawBreak && !spaced {
				container.InsertBefore(dom.NewText(" "), n)
			}
			return
		}
	}
}

// mergeLabelParagraphs merges "<p>label:</p><p>body</p>" into one paragraph
// when the item has exactly two paragraph children, both inline-only.
func mergeLabelParagraphs(li *html.Node) {
	ps := directParagraphs(li)
	if len(ps) != 2 {
		return
	}
	first, second := ps[0], ps[1]
	if isPseudoItem(first) || isPseudoItem(second) {
		return
	}
	if _, ok := findLabelPrefix(first); !ok {
		return
	}
	if !isInlineOnly(first) || !isInlineOnly(second) {
		return
	}
	if strings.TrimSpace(dom.TextContent(second)) == "" {
		return
	}

	for second.FirstChild != nil && dom.IsBlankText(second.FirstChild) {
		second.RemoveChild(second.FirstChild)
	}
	if last := first.LastChild; dom.IsText(last) {
		last.Data = strings.TrimRightFunc(last.Data, unicode.IsSpace) + " "
	} else {
		first.AppendChild(dom.NewText(" "))
	}
	dom.MoveChildren(first, second)
	dom.Detach(second)
}

// unwrapSimpleParagraphs flattens an item made only of inline paragraphs
// into one inline flow, paragraphs joined by a single space. Items with a
// nested list are left alone.
func unwrapSimpleParagraphs(li *html.Node) {
	if hasDirectNestedList(li) {
		return
	}
	kids := dom.MeaningfulChildren(li)
	if len(kids) == 0 {
		return
	}
	for _, k := range kids {
		if !dom.IsElement(k, "p") || isPseudoItem(k) || !isInlineOnly(k) {
			return
		}
	}

	var flow []*html.Node
	for _, p := range kids {
		children := dom.Children(p)
		if len(flow) > 0 {
			for len(children) > 0 && dom.IsBlankText(children[0]) {
				children = children[1:]
			}
			if len(children) > 0 && dom.IsText(children[0]) {
				children[0].Data = strings.TrimLeftFunc(children[0].Data, unicode.IsSpace)
			}
			if last := flow[len(flow)-1]; dom.IsText(last) {
				last.Data = strings.TrimRightFunc(last.Data, unicode.IsSpace) + " "
			} else {
				flow = append(flow, dom.NewText(" "))
			}
		}
		flow = append(flow, children...)
	}
	dom.RemoveChildren(li)
	for _, n := range flow {
		dom.Append(li, n)
	}
}
