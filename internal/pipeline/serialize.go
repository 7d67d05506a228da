package pipeline

import (
	"context"
	"strings"

	"github.com/alnah/go-md2wechat/internal/dom"
	"golang.org/x/net/html"
)

// SerializeInput is what a Serializer receives after the DOM has settled.
type SerializeInput struct {
	Root       *html.Node    // settled container; the serializer may mutate it
	SourcePath string        // markdown source path, "" when unknown
	Host       any           // host binding of the render call
	Formulas   *FormulaTable // formulas pre-rendered by this call only
}

// Serializer turns a settled DOM into HTML, injecting the call's formulas.
type Serializer interface {
	Serialize(ctx context.Context, in SerializeInput) (string, error)
}

// DefaultSerializer replaces formula placeholders with their rendered markup
// and wraps the result in <section>.
//
// A block formula that is the only content of a paragraph replaces the
// paragraph. Placeholders missing from the call's table are left as text.
type DefaultSerializer struct{}

// Serialize implements Serializer.
func (DefaultSerializer) Serialize(ctx context.Context, in SerializeInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if in.Root == nil {
		return "<section></section>", nil
	}
	if err := InjectFormulas(in.Root, in.Formulas); err != nil {
		return "", err
	}
	body, err := dom.RenderChildren(in.Root)
	if err != nil {
		return "", err
	}
	return "<section>" + body + "</section>", nil
}

// InjectFormulas replaces every known placeholder under root with its markup.
func InjectFormulas(root *html.Node, table *FormulaTable) error {
	if table.Len() == 0 {
		return nil
	}
	texts := dom.FindAll(root, func(n *html.Node) bool {
		return dom.IsText(n) && strings.Contains(n.Data, FormulaStartDelimiter)
	})
	for _, t := range texts {
		replaced, err := replaceSoleBlockParagraph(t, table)
		if err != nil {
			return err
		}
		if replaced {
			continue
		}
		if err := replacePlaceholdersInText(t, table); err != nil {
			return err
		}
	}
	return nil
}

// replaceSoleBlockParagraph handles <p>PLACEHOLDER</p> for a block formula.
func replaceSoleBlockParagraph(t *html.Node, table *FormulaTable) (bool, error) {
	p := t.Parent
	if !dom.IsElement(p, "p") || p.Parent == nil {
		return false, nil
	}
	if kids := dom.MeaningfulChildren(p); len(kids) != 1 || kids[0] != t {
		return false, nil
	}
	f, ok := table.Lookup(strings.TrimSpace(t.Data))
	if !ok || !f.Block {
		return false, nil
	}
	nodes, err := dom.ParseFragment(f.Rendered)
	if err != nil {
		return false, err
	}
	parent := p.Parent
	for _, n := range nodes {
		parent.InsertBefore(n, p)
	}
	dom.Detach(p)
	return true, nil
}

// replacePlaceholdersInText splits t around placeholders and splices in markup.
func replacePlaceholdersInText(t *html.Node, table *FormulaTable) error {
	locs := placeholderPattern.FindAllStringIndex(t.Data, -1)
	if len(locs) == 0 || t.Parent == nil {
		return nil
	}

	parent := t.Parent
	text := t.Data
	cursor := 0
	pending := ""
	flush := func() {
		if pending != "" {
			parent.InsertBefore(dom.NewText(pending), t)
			pending = ""
		}
	}

	for _, loc := range locs {
		pending += text[cursor:loc[0]]
		token := text[loc[0]:loc[1]]
		cursor = loc[1]

		f, ok := table.Lookup(token)
		if !ok {
			pending += token
			continue
		}
		nodes, err := dom.ParseFragment(f.Rendered)
		if err != nil {
			return err
		}
		flush()
		for _, n := range nodes {
			parent.InsertBefore(n, t)
		}
	}
	pending += text[cursor:]
	flush()
	dom.Detach(t)
	return nil
}
