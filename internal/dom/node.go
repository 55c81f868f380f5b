// Package dom exposes a read-only element tree over parsed HTML so that
// extractors can be exercised against fixtures instead of a live browser.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is a read-only element in a parsed document. Selectors use CSS syntax.
type Node interface {
	// Find returns every descendant matching selector, in document order.
	Find(selector string) []Node
	// First returns the first descendant matching selector, or nil.
	First(selector string) Node
	// Children returns the element children of the node.
	Children() []Node
	// Is reports whether the node itself matches selector.
	Is(selector string) bool
	// Closest returns the node or its nearest ancestor matching selector, or nil.
	Closest(selector string) Node
	// Contains reports whether other is a strict descendant of the node.
	Contains(other Node) bool
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Text returns the concatenated text content, like textContent.
	Text() string
	// InnerText returns the rendered text with block boundaries as line breaks.
	InnerText() string
	// InnerTextExcluding is InnerText with subtrees matching selector omitted.
	InnerTextExcluding(selector string) string
	// HTML returns the outer HTML of the node.
	HTML() string
}

// Parse reads an HTML document and returns its root node.
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return element{sel: doc.Selection}, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

// element wraps a single-node goquery selection.
type element struct {
	sel *goquery.Selection
}

func wrapAll(s *goquery.Selection) []Node {
	nodes := make([]Node, 0, s.Length())
	s.Each(func(_ int, e *goquery.Selection) {
		nodes = append(nodes, element{sel: e})
	})
	return nodes
}

func wrapFirst(s *goquery.Selection) Node {
	if s.Length() == 0 {
		return nil
	}
	return element{sel: s.First()}
}

func (e element) Find(selector string) []Node {
	return wrapAll(e.sel.Find(selector))
}

func (e element) First(selector string) Node {
	return wrapFirst(e.sel.Find(selector))
}

func (e element) Children() []Node {
	return wrapAll(e.sel.Children())
}

func (e element) Is(selector string) bool {
	return e.sel.Is(selector)
}

func (e element) Closest(selector string) Node {
	return wrapFirst(e.sel.Closest(selector))
}

func (e element) Contains(other Node) bool {
	o, ok := other.(element)
	if !ok || o.sel.Length() == 0 || Same(e, o) {
		return false
	}
	return e.sel.Contains(o.sel.Get(0))
}

func (e element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e element) Text() string {
	return e.sel.Text()
}

func (e element) InnerText() string {
	return renderText(e.sel.Get(0), nil)
}

func (e element) InnerTextExcluding(selector string) string {
	skip := make(map[*html.Node]bool)
	for _, n := range e.sel.Find(selector).Nodes {
		skip[n] = true
	}
	return renderText(e.sel.Get(0), skip)
}

func (e element) HTML() string {
	if e.sel.Get(0).Type == html.DocumentNode {
		h, err := e.sel.Html()
		if err != nil {
			return ""
		}
		return h
	}
	h, err := goquery.OuterHtml(e.sel)
	if err != nil {
		return ""
	}
	return h
}

// Same reports whether a and b refer to the same underlying element.
func Same(a, b Node) bool {
	ea, ok := a.(element)
	if !ok {
		return false
	}
	eb, ok := b.(element)
	if !ok {
		return false
	}
	return ea.sel.Get(0) == eb.sel.Get(0)
}

// TextOf returns the normalized text content of n, or "" when n is nil.
func TextOf(n Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.Text()), " ")
}

// AttrOf returns the trimmed attribute value of n, or "" when n is nil.
func AttrOf(n Node, name string) string {
	if n == nil {
		return ""
	}
	v, _ := n.Attr(name)
	return strings.TrimSpace(v)
}

// MetaContent returns the content of a <meta> tag addressed by property or name.
func MetaContent(root Node, key string) string {
	if root == nil {
		return ""
	}
	if v := AttrOf(root.First(fmt.Sprintf(`meta[property=%q]`, key)), "content"); v != "" {
		return v
	}
	return AttrOf(root.First(fmt.Sprintf(`meta[name=%q]`, key)), "content")
}
