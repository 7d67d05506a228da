package cleaner

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2wechat/internal/dom"
)

// DefaultShortLabelMaxRunes is the longest second chunk, in runes, that
// short-label bundling keeps on the same line as the leading label.
const DefaultShortLabelMaxRunes = 16

// ErrParse indicates the input could not be parsed as an HTML fragment.
var ErrParse = errors.New("cleaner: cannot parse HTML")

// Cleaner rewrites list-heavy HTML for the target editor.
// A Cleaner is immutable after construction and safe for concurrent use.
type Cleaner struct {
	shortLabelMaxRunes int
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithShortLabelMaxRunes sets the short-label bundling threshold.
// Values below 1 disable bundling.
func WithShortLabelMaxRunes(n int) Option {
	return func(c *Cleaner) {
		c.shortLabelMaxRunes = n
	}
}

// New creates a Cleaner.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{shortLabelMaxRunes: DefaultShortLabelMaxRunes}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean parses an HTML fragment, rewrites it and renders it back.
func (c *Cleaner) Clean(content string) (string, error) {
	root, err := dom.ParseContainer(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	c.CleanNode(root)
	return dom.RenderChildren(root)
}

// Clean runs a Cleaner with default settings.
func Clean(content string) (string, error) {
	return New().Clean(content)
}

// CleanNode rewrites the subtree under root in place.
//
// Order: per-item label, paragraph and prefix fixes (document order, outer
// items first) ending with continuation and colon-label wrapping, then
// flattening of deep lists, margin reset of singly nested lists, pruning of
// empty items, whitespace stripping and forced-inline styling of strong/code
// inside items.
func (c *Cleaner) CleanNode(root *html.Node) {
	for _, li := range dom.FindElements(root, "li") {
		c.cleanItem(li)
	}

	flattenDeepLists(root)
	resetNestedListMargins(root)
	pruneEmptyItems(root)
	stripListWhitespace(root)
	forceInlineInItems(root)
	dom.MergeText(root)
}

// cleanItem runs the per-item passes on one <li>.
func (c *Cleaner) cleanItem(li *html.Node) {
	for _, p := range directParagraphs(li) {
		if isPseudoItem(p) {
			continue
		}
		collapseLabelBreak(p)
	}
	mergeLabelParagraphs(li)
	unwrapSimpleParagraphs(li)
	collapseLabelBreak(li)
	convertLeadingStrongOrCode(li)
	healBreakAfterPrefix(li)
	dom.MergeText(li)
	wrapTextContinuation(li)
	if c.bundleShortLabel(li) {
		healBreakAfterPrefix(li)
	}
	wrapLabelFlow(li)
	wrapContentBeforeNestedList(li)
	dom.MergeText(li)
}
