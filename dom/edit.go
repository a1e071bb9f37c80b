package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// ReplaceTextSpan replaces the rune range [start, end) of a text node with
// the given markup fragment followed by a single space, and returns the
// caret snapshot immediately after the insertion. The trailing space is
// mandatory: it terminates the entity visually and prevents the next
// keystroke from being detected as a continuation of the trigger.
//
// Text before start and after end is preserved byte for byte. The original
// text node is replaced, so callers must re-resolve any paths they hold;
// the returned snapshot is already valid against root.
func ReplaceTextSpan(root, textNode *html.Node, start, end int, fragment []*html.Node) (Snapshot, error) {
	if textNode.Type != html.TextNode {
		return Snapshot{}, fmt.Errorf("dom: replace span: not a text node")
	}
	parent := textNode.Parent
	if parent == nil {
		return Snapshot{}, fmt.Errorf("dom: replace span: detached text node")
	}

	runes := []rune(textNode.Data)
	if start < 0 || end < start || end > len(runes) {
		return Snapshot{}, fmt.Errorf("dom: replace span: range [%d,%d) out of bounds (len %d)", start, end, len(runes))
	}

	before := string(runes[:start])
	// The trailing space is fused onto the remainder so the caret lands in
	// a real text node right after it.
	after := " " + string(runes[end:])

	next := textNode.NextSibling
	parent.RemoveChild(textNode)

	insert := func(n *html.Node) {
		n.Parent = nil
		n.PrevSibling = nil
		n.NextSibling = nil
		parent.InsertBefore(n, next)
	}

	if before != "" {
		insert(&html.Node{Type: html.TextNode, Data: before})
	}
	for _, n := range fragment {
		insert(n)
	}
	tail := &html.Node{Type: html.TextNode, Data: after}
	insert(tail)

	return Capture(root, tail, 1)
}
