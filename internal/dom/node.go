package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsElement reports whether n is an element with one of the given tag names.
// With no tags it reports whether n is any element.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsBlankText reports whether n is a text node holding only whitespace.
func IsBlankText(n *html.Node) bool {
	return IsText(n) && strings.TrimSpace(n.Data) == ""
}

// TextContent concatenates the text of n and all its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
				continue
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return sb.String()
}

// Children returns a snapshot of the child nodes of n.
// The slice stays valid while children are moved or removed.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns a snapshot of the element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// MeaningfulChildren returns the children of n that are not whitespace-only text.
func MeaningfulChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !IsBlankText(c) {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns the descendants of n (excluding n) matching pred, in document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// FindElements returns the descendant elements of n with one of the given tags.
func FindElements(n *html.Node, tags ...string) []*html.Node {
	return FindAll(n, func(c *html.Node) bool { return IsElement(c, tags...) })
}

// HasDescendant reports whether any descendant of n matches pred.
func HasDescendant(n *html.Node, pred func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) || HasDescendant(c, pred) {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor of n (including n) matching pred, or nil.
func Closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// Contains reports whether n is root or a descendant of root.
func Contains(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key on n, replacing an existing value in place.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// HasClass reports whether n carries class cls.
func HasClass(n *html.Node, cls string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if f == cls {
			return true
		}
	}
	return false
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Append moves child to the end of parent, detaching it first.
func Append(parent, child *html.Node) {
	Detach(child)
	parent.AppendChild(child)
}

// InsertBefore moves child before ref inside parent, detaching it first.
// A nil ref appends.
func InsertBefore(parent, child, ref *html.Node) {
	Detach(child)
	parent.InsertBefore(child, ref)
}

// ReplaceWith puts repl where n was and detaches n.
func ReplaceWith(n, repl *html.Node) {
	if n.Parent == nil {
		return
	}
	InsertBefore(n.Parent, repl, n)
	Detach(n)
}

// RemoveChildren detaches all children of n.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// MoveChildren moves all children of src to the end of dst.
func MoveChildren(dst, src *html.Node) {
	for src.FirstChild != nil {
		Append(dst, src.FirstChild)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		InsertBefore(parent, n.FirstChild, n)
	}
	Detach(n)
}

// Clone returns a deep copy of n, detached from any tree.
func Clone(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = make([]html.Attribute, len(n.Attr))
		copy(out.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(Clone(c))
	}
	return out
}

// MergeText joins adjacent text nodes under n and drops empty ones, which is
// the shape a render-and-parse round trip produces.
func MergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case IsText(c) && c.Data == "":
			n.RemoveChild(c)
		case IsText(c):
			for IsText(next) {
				c.Data += next.Data
				after := next.NextSibling
				n.RemoveChild(next)
				next = after
			}
		default:
			MergeText(c)
		}
		c = next
	}
}
