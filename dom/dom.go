// Package dom implements the structural document operations the editor
// performs host-side on an x/net/html mirror of the editing surface:
// child-index node addressing, caret snapshots that survive mutation,
// text-window extraction around the caret, markup splicing, and the
// blockquote-exit restructure.
//
// Node references into a live tree are invalidated the moment a node is
// removed or replaced, which happens routinely during entity insertion and
// block-exit restructuring. Everything here therefore addresses nodes by
// child-index paths from a stable root, never by held pointers.
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseBody parses a serialised document and returns its <body> element,
// which serves as the mirror root. The editing surface serialises its
// editor root's inner HTML, so body's children are the document blocks.
func ParseBody(doc string) (*html.Node, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	body := find(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return nil, fmt.Errorf("dom: document has no body")
	}
	return body, nil
}

// ParseFragment parses markup in a body context and returns the resulting
// sibling nodes.
func ParseFragment(markup string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

// RenderChildren serialises the children of root, i.e. the editor document,
// back to HTML.
func RenderChildren(root *html.Node) string {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		// html.Render on detached-in-place children never fails for
		// in-memory trees writing to a Builder.
		_ = html.Render(&b, c)
	}
	return b.String()
}

// Text returns the concatenated text content of n's subtree.
func Text(n *html.Node) string {
	var b strings.Builder
	visit(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// find returns the first node in document order satisfying pred.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	visit(n, func(c *html.Node) bool {
		if found == nil && pred(c) {
			found = c
		}
		return found == nil
	})
	return found
}

// visit walks the subtree in document order; the callback returns false to
// stop the walk.
func visit(n *html.Node, f func(*html.Node) bool) bool {
	if !f(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !visit(c, f) {
			return false
		}
	}
	return true
}
