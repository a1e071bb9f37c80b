package dom

import "golang.org/x/net/html"

// Path addresses a node as a sequence of child indices from a stable root.
// Unlike a node pointer, a Path can be re-resolved after the tree has been
// restructured; unlike an XPath it is cheap to compute and compare.
type Path []int

// PathOf computes the path of n relative to root. ok is false when n is not
// inside root's subtree.
func PathOf(root, n *html.Node) (Path, bool) {
	if n == root {
		return Path{}, true
	}
	var rev []int
	for cur := n; cur != nil && cur != root; cur = cur.Parent {
		parent := cur.Parent
		if parent == nil {
			return nil, false
		}
		idx := 0
		for sib := parent.FirstChild; sib != nil && sib != cur; sib = sib.NextSibling {
			idx++
		}
		rev = append(rev, idx)
	}
	// Reverse into root-first order.
	p := make(Path, len(rev))
	for i, idx := range rev {
		p[len(rev)-1-i] = idx
	}
	return p, true
}

// Resolve follows the path from root. ok is false when any index no longer
// exists, e.g. because an ancestor on the path was removed.
func (p Path) Resolve(root *html.Node) (*html.Node, bool) {
	cur := root
	for _, idx := range p {
		child := cur.FirstChild
		for i := 0; child != nil && i < idx; i++ {
			child = child.NextSibling
		}
		if child == nil {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
