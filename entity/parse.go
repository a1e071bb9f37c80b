package entity

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// IsMentionNode reports whether n is mention markup: an anchor carrying
// data-user-id.
func IsMentionNode(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode &&
		n.DataAtom == atom.A && attr(n, AttrUserID) != ""
}

// IsEmojiNode reports whether n is emoji markup: an image carrying
// data-emoji-id.
func IsEmojiNode(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode &&
		n.DataAtom == atom.Img && attr(n, AttrEmojiID) != ""
}

// MentionFromNode decodes mention markup back into a Mention. Returns nil
// when n is not mention markup.
func MentionFromNode(n *html.Node) *Mention {
	if !IsMentionNode(n) {
		return nil
	}
	m := &Mention{
		User: User{
			ID:          attr(n, AttrUserID),
			Username:    attr(n, AttrUsername),
			DisplayName: attr(n, AttrDisplayName),
		},
		Format: FormatLink,
	}
	// Recover the trigger from the anchor text ("@alice" → "@").
	if text := nodeText(n); text != "" && m.User.Username != "" {
		if i := strings.Index(text, m.User.Username); i > 0 {
			m.Trigger = text[:i]
		}
	}
	if m.Trigger == "" {
		m.Trigger = "@"
	}
	return m
}

// EmojiFromNode decodes emoji markup back into an Emoji. Returns nil when n
// is not emoji markup.
func EmojiFromNode(n *html.Node) *Emoji {
	if !IsEmojiNode(n) {
		return nil
	}
	return &Emoji{
		ID:       attr(n, AttrEmojiID),
		Name:     attr(n, AttrEmojiName),
		ImageURL: attr(n, "src"),
	}
}

// Ancestor walks up from n to the nearest entity markup node, bounded by
// root. Returns nil when no entity encloses n, never an error; malformed
// trees degrade to "no entity found".
func Ancestor(root, n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if IsMentionNode(cur) || IsEmojiNode(cur) {
			return cur
		}
		if cur == root {
			return nil
		}
	}
	return nil
}

// ParseMentions re-scans a serialised document for mention markup. The
// document markup is the only registry; this is how "get all mentions"
// works.
func ParseMentions(doc string) ([]Mention, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("entity: parse document: %w", err)
	}
	var out []Mention
	walk(root, func(n *html.Node) {
		if m := MentionFromNode(n); m != nil {
			out = append(out, *m)
		}
	})
	return out, nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
