package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms are the elements that delimit a text window: scanning for
// trigger sequences never crosses a block boundary.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Td: true, atom.Th: true,
	atom.Pre: true, atom.Body: true,
}

// BlockAncestor returns the nearest block-level ancestor of n, bounded by
// root. When nothing between n and root is block-level, root itself is the
// block.
func BlockAncestor(root, n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return root
		}
		if cur.Type == html.ElementNode && blockAtoms[cur.DataAtom] {
			return cur
		}
	}
	return root
}

// TextBefore extracts up to window runes of text immediately preceding the
// caret, confined to the caret's block. The result is the scanning window
// for trigger detection; its rune length is the caret position within that
// window.
func TextBefore(root *html.Node, snap Snapshot, window int) string {
	node, offset := Restore(root, snap)
	block := BlockAncestor(root, node)

	var b strings.Builder
	collectUpTo(block, node, offset, &b)

	runes := []rune(b.String())
	if window > 0 && len(runes) > window {
		runes = runes[len(runes)-window:]
	}
	return string(runes)
}

// collectUpTo appends the text of scope in document order, stopping at the
// caret (node, offset). Returns false once the caret has been reached.
// A caret inside an element node addresses a child index; a caret inside a
// text node addresses a rune offset.
func collectUpTo(scope, node *html.Node, offset int, b *strings.Builder) bool {
	if scope == node {
		if scope.Type == html.TextNode {
			runes := []rune(scope.Data)
			if offset > len(runes) {
				offset = len(runes)
			}
			b.WriteString(string(runes[:offset]))
		} else {
			idx := 0
			for c := scope.FirstChild; c != nil && idx < offset; c = c.NextSibling {
				b.WriteString(Text(c))
				idx++
			}
		}
		return false
	}
	if scope.Type == html.TextNode {
		b.WriteString(scope.Data)
		return true
	}
	// Line breaks are whitespace boundaries for the scan.
	if scope.Type == html.ElementNode && scope.DataAtom == atom.Br {
		b.WriteString("\n")
		return true
	}
	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		if !collectUpTo(c, node, offset, b) {
			return false
		}
	}
	return true
}
