package cleaner

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

const (
	pseudoIndentStep = 20 // px per nesting level beyond the first
	bulletMarker     = "• "
)

var (
	newlineRunPattern    = regexp.MustCompile(`\s*\n\s*`)
	whitespaceRunPattern = regexp.MustCompile(`\s{2,}`)
)

// listDepth counts the <ul>/<ol> ancestors of list.
func listDepth(list *html.Node) int {
	depth := 0
	for p := list.Parent; p != nil; p = p.Parent {
		if isList(p) {
			depth++
		}
	}
	return depth
}

// flattenDeepLists replaces every list nested two or more levels deep with a
// flat run of marker-prefixed paragraphs.
func flattenDeepLists(root *html.Node) {
	for _, list := range dom.FindElements(root, "ul", "ol") {
		if !dom.Contains(root, list) {
			continue // already consumed by an outer flattening
		}
		depth := listDepth(list)
		if depth < 2 {
			continue
		}
		for _, item := range buildPseudoItems(list, depth) {
			dom.InsertBefore(list.Parent, item, list)
		}
		dom.Detach(list)
	}
}

// buildPseudoItems converts the items of list into paragraphs indented by
// depth. Sub-lists follow their parent item's paragraph, depth-first.
func buildPseudoItems(list *html.Node, depth int) []*html.Node {
	ordered := list.Data == "ol"
	index := 1

	var out []*html.Node
	for _, li := range dom.ElementChildren(list) {
		if li.Data != "li" {
			continue
		}

		var nested []*html.Node
		var content []*html.Node
		for _, c := range dom.Children(li) {
			switch {
			case isList(c):
				nested = append(nested, c)
			case dom.IsElement(c, "p") || isBlockWrapper(c):
				kids := dom.Children(c)
				if len(kids) > 0 && len(content) > 0 {
					content = append(content, dom.NewText(" "))
				}
				content = append(content, kids...)
			default:
				content = append(content, c)
			}
		}

		for len(content) > 0 && dom.IsBlankText(content[0]) {
			content = content[1:]
		}
		if len(content) > 0 && dom.IsText(content[0]) {
			content[0].Data = strings.TrimLeftFunc(content[0].Data, unicode.IsSpace)
		}

		if hasContent(content) {
			out = append(out, pseudoItem(li, content, ordered, index, depth))
		}
		for _, sub := range nested {
			out = append(out, buildPseudoItems(sub, depth+1)...)
		}
		index++
	}
	return out
}

func hasContent(nodes []*html.Node) bool {
	for _, n := range nodes {
		if !dom.IsBlankText(n) {
			return true
		}
	}
	return false
}

// pseudoItem builds one marker-prefixed paragraph from the content of li.
// Content holding block elements goes into a <section>, which may contain them.
func pseudoItem(li *html.Node, content []*html.Node, ordered bool, index, depth int) *html.Node {
	var kept []*html.Node
	for _, n := range content {
		if dom.IsText(n) {
			n.Data = newlineRunPattern.ReplaceAllString(n.Data, " ")
			n.Data = whitespaceRunPattern.ReplaceAllString(n.Data, " ")
			if strings.TrimSpace(n.Data) == "" && len(kept) == 0 {
				continue
			}
		}
		kept = append(kept, n)
	}
	for len(kept) > 0 && dom.IsBlankText(kept[len(kept)-1]) {
		kept = kept[:len(kept)-1]
	}
	if len(kept) > 0 && dom.IsText(kept[len(kept)-1]) {
		last := kept[len(kept)-1]
		last.Data = strings.TrimRightFunc(last.Data, unicode.IsSpace)
	}

	marker := bulletMarker
	if ordered {
		marker = strconv.Itoa(index) + ". "
	}
	if len(kept) > 0 && dom.IsText(kept[0]) {
		kept[0].Data = marker + strings.TrimLeftFunc(kept[0].Data, unicode.IsSpace)
	} else {
		kept = append([]*html.Node{dom.NewText(marker)}, kept...)
	}

	tag := "p"
	if containsFlowBlock(kept) {
		tag = "section"
	}
	item := dom.NewElement(tag)

	style := dom.ElementStyle(li).Without(func(prop string) bool {
		return strings.HasPrefix(prop, "margin") || strings.HasPrefix(prop, "padding")
	})
	indent := max(0, depth-1) * pseudoIndentStep
	style = append(style,
		dom.Decl{Property: "margin", Value: "0 0 4px " + strconv.Itoa(indent) + "px"},
		dom.Decl{Property: "padding", Value: "0"},
	)
	dom.SetStyle(item, style)

	for _, n := range kept {
		dom.Append(item, n)
	}
	return item
}
