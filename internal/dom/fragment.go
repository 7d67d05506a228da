package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// bodyContext returns a fresh <body> element used as the fragment parsing context.
func bodyContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
}

// ParseFragment parses an HTML fragment with body context and returns the
// top-level nodes, detached from any parent.
func ParseFragment(content string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(content), bodyContext())
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// ParseContainer parses an HTML fragment into a detached container node.
// The container is a DocumentNode so rendering it yields the fragment only.
func ParseContainer(content string) (*html.Node, error) {
	nodes, err := ParseFragment(content)
	if err != nil {
		return nil, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// RenderChildren renders every child of n, without n itself.
func RenderChildren(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children of n with the parsed fragment.
func SetInnerHTML(n *html.Node, content string) error {
	nodes, err := ParseFragment(content)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}
