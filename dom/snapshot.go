package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// Snapshot is a structural capture of the caret: a path from the root to the
// containing node plus a rune offset inside it. It stays meaningful across
// DOM mutation as long as the recorded path still resolves.
//
// A snapshot is only valid against the root it was captured from.
type Snapshot struct {
	Path   Path `json:"path"`
	Offset int  `json:"offset"`
}

// Capture records the caret position (node, offset) relative to root.
func Capture(root, node *html.Node, offset int) (Snapshot, error) {
	p, ok := PathOf(root, node)
	if !ok {
		return Snapshot{}, fmt.Errorf("dom: caret node is outside the root")
	}
	if offset < 0 {
		offset = 0
	}
	return Snapshot{Path: p, Offset: offset}, nil
}

// Restore re-resolves the snapshot against root. When the full path no
// longer resolves (an ancestor on it was removed) it falls back to the
// nearest still-valid ancestor with the selection collapsed to its start.
// Restore never fails; the ultimate fallback is (root, 0).
func Restore(root *html.Node, snap Snapshot) (*html.Node, int) {
	if n, ok := snap.Path.Resolve(root); ok {
		return n, clampOffset(n, snap.Offset)
	}
	for prefix := len(snap.Path) - 1; prefix >= 0; prefix-- {
		if n, ok := snap.Path[:prefix].Resolve(root); ok {
			return n, 0
		}
	}
	return root, 0
}

// clampOffset bounds a rune offset to the node's addressable positions:
// text length for text nodes, child count for elements.
func clampOffset(n *html.Node, offset int) int {
	max := 0
	switch n.Type {
	case html.TextNode:
		max = len([]rune(n.Data))
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			max++
		}
	}
	if offset > max {
		return max
	}
	if offset < 0 {
		return 0
	}
	return offset
}
