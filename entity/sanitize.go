package entity

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the markup policy for content entering the document: host-set
// HTML, pasted fragments, and custom mention templates. It allows the
// editor's working tag set plus the entity data attributes, and nothing
// executable.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowAttrs(AttrUserID, AttrUsername, AttrDisplayName).OnElements("a", "span")
	p.AllowAttrs(AttrEmojiID, AttrEmojiName).OnElements("img", "span")
	p.AllowAttrs("class").OnElements("a", "span", "div", "p", "img", "blockquote")
	p.AllowAttrs("style").OnElements("span", "p", "div", "font")
	p.AllowAttrs("color", "size", "face").OnElements("font")
	// Todo checkboxes.
	p.AllowAttrs("type", "checked").Matching(regexp.MustCompile(`^(checkbox|checked|)$`)).OnElements("input")
	p.AllowElements("u", "s", "sub", "sup", "font", "input", "video", "audio", "iframe", "source")
	p.AllowAttrs("src", "controls", "width", "height", "frameborder", "allowfullscreen").OnElements("video", "audio", "iframe", "source")
	p.AllowRelativeURLs(true)

	return p
}

// Sanitize cleans a markup fragment per the editor policy.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}
