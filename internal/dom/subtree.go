package dom

import (
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Subtree is the scratch container a host renderer writes into.
// It is owned by exactly one render call and never reused. Mutations and reads
// are serialized, so a renderer may resolve embeds from its own goroutines
// while the settle detector polls.
type Subtree struct {
	mu   sync.Mutex
	root *html.Node
}

// NewSubtree returns an empty <div> container.
func NewSubtree() *Subtree {
	return &Subtree{
		root: &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Div,
			Data:     "div",
		},
	}
}

// Update runs fn with exclusive access to the container element.
func (s *Subtree) Update(fn func(root *html.Node)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.root)
}

// View runs fn with exclusive access to the container element.
// fn must not retain nodes after it returns.
func (s *Subtree) View(fn func(root *html.Node)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.root)
}

// SetInnerHTML replaces the container content with the parsed fragment.
func (s *Subtree) SetInnerHTML(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SetInnerHTML(s.root, content)
}

// InnerHTML renders the container content.
func (s *Subtree) InnerHTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RenderChildren(s.root)
}

// Snapshot returns a deep copy of the container, safe to use without the lock.
func (s *Subtree) Snapshot() *html.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.root)
}
