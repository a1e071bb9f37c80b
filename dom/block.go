package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// contentAtoms are elements that count as content even when a block has no
// text: an image alone makes a block non-empty.
var contentAtoms = map[atom.Atom]bool{
	atom.Img: true, atom.Span: true, atom.Div: true, atom.Input: true,
}

// IsEmptyBlock reports whether a block holds no meaningful content: its
// trimmed text is empty and it has no embedded element content. A lone
// line-break marker does not count as content.
func IsEmptyBlock(n *html.Node) bool {
	if n == nil {
		return false
	}
	if strings.TrimSpace(Text(n)) != "" {
		return false
	}
	empty := true
	visit(n, func(c *html.Node) bool {
		if c != n && c.Type == html.ElementNode && contentAtoms[c.DataAtom] {
			empty = false
		}
		return empty
	})
	return empty
}

// BlockquoteAncestor returns the nearest blockquote enclosing n, bounded by
// root, or nil.
func BlockquoteAncestor(root, n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.DataAtom == atom.Blockquote {
			return cur
		}
		if cur == root {
			return nil
		}
	}
	return nil
}

// ExitBlockquote implements the Enter-on-empty-line escape from a quoted
// block: when the caret's current block inside a blockquote is empty, the
// block is removed and a fresh paragraph is inserted immediately after the
// blockquote, with the returned snapshot placing the caret inside it.
//
// Returns ok=false, leaving the tree untouched, when the caret is not
// inside a blockquote or the current block is non-empty; in that case the
// engine's native newline behaviour applies.
func ExitBlockquote(root *html.Node, snap Snapshot) (Snapshot, bool) {
	node, _ := Restore(root, snap)

	bq := BlockquoteAncestor(root, node)
	if bq == nil || bq == root {
		return snap, false
	}

	// The current block is the caret's highest ancestor that is a direct
	// child of the blockquote; a caret sitting directly in the blockquote
	// has no removable block.
	if node == bq {
		return snap, false
	}
	block := node
	for block != nil && block.Parent != bq {
		block = block.Parent
	}
	if block == nil || !IsEmptyBlock(block) {
		return snap, false
	}

	bq.RemoveChild(block)

	para := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	para.AppendChild(&html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})

	parent := bq.Parent
	if parent == nil {
		return snap, false
	}
	parent.InsertBefore(para, bq.NextSibling)

	out, err := Capture(root, para, 0)
	if err != nil {
		return snap, false
	}
	return out, true
}
