package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Decl is one CSS declaration of an inline style attribute.
type Decl struct {
	Property string
	Value    string
}

// Style is an ordered list of inline CSS declarations.
// Formatting a parsed style always yields the canonical "prop: value;" form,
// so parse-edit-format cycles converge after one pass.
type Style []Decl

// ParseStyle splits an inline style attribute into declarations.
// Empty or malformed declarations are dropped; property names are lower-cased.
func ParseStyle(s string) Style {
	var out Style
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.Join(strings.Fields(val), " ")
		if prop == "" || val == "" {
			continue
		}
		out = append(out, Decl{Property: prop, Value: val})
	}
	return out
}

// String formats the declarations as "prop: value; prop: value;".
func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.Property+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// Without returns s minus every declaration whose property matches drop.
func (s Style) Without(drop func(prop string) bool) Style {
	out := make(Style, 0, len(s))
	for _, d := range s {
		if drop(d.Property) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// WithoutProps returns s minus the named properties.
func (s Style) WithoutProps(props ...string) Style {
	return s.Without(func(p string) bool {
		for _, name := range props {
			if p == name {
				return true
			}
		}
		return false
	})
}

// Get returns the value of the last declaration of prop.
func (s Style) Get(prop string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Property == prop {
			return s[i].Value, true
		}
	}
	return "", false
}

// ElementStyle parses the style attribute of n.
func ElementStyle(n *html.Node) Style {
	v, _ := Attr(n, "style")
	return ParseStyle(v)
}

// SetStyle writes s to the style attribute of n, removing the attribute when s is empty.
func SetStyle(n *html.Node, s Style) {
	if len(s) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", s.String())
}
