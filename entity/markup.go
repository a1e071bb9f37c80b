package entity

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Markup serialises the mention per its format. Custom formats run template
// substitution and sanitise the result, so a hostile template cannot smuggle
// script into the document.
func (m Mention) Markup() (string, error) {
	if m.User.Username == "" {
		return "", fmt.Errorf("entity: mention without username")
	}
	trigger := m.Trigger
	if trigger == "" {
		trigger = "@"
	}

	switch m.Format {
	case FormatText, "":
		return trigger + m.User.Username, nil

	case FormatLink:
		return m.linkMarkup(trigger), nil

	case FormatCustomHTML, FormatCustomWidget:
		if m.Template == "" {
			return "", fmt.Errorf("entity: format %q requires a template", m.Format)
		}
		return Sanitize(m.expand(m.Template, trigger)), nil

	default:
		return "", fmt.Errorf("entity: unknown mention format %q", m.Format)
	}
}

func (m Mention) linkMarkup(trigger string) string {
	var b strings.Builder
	b.WriteString("<a")

	attrs := map[string]string{
		"href":       m.Attributes["href"],
		AttrUserID:   m.User.ID,
		AttrUsername: m.User.Username,
	}
	if attrs["href"] == "" {
		attrs["href"] = "#"
	}
	if m.User.DisplayName != "" {
		attrs[AttrDisplayName] = m.User.DisplayName
	}
	for k, v := range m.Attributes {
		if k == "href" {
			continue
		}
		attrs[k] = v
	}

	// Deterministic attribute order.
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ` %s="%s"`, k, html.EscapeString(attrs[k]))
	}

	b.WriteString(">")
	b.WriteString(html.EscapeString(trigger + m.User.Username))
	b.WriteString("</a>")
	return b.String()
}

// expand substitutes the template variables. Values are attribute-escaped;
// templates place them inside quoted attributes or element text.
func (m Mention) expand(tmpl, trigger string) string {
	r := strings.NewReplacer(
		"{trigger}", html.EscapeString(trigger),
		"{username}", html.EscapeString(m.User.Username),
		"{displayName}", html.EscapeString(m.User.DisplayName),
		"{userId}", html.EscapeString(m.User.ID),
		"{avatarUrl}", html.EscapeString(m.User.AvatarURL),
		"{role}", html.EscapeString(m.User.Role),
	)
	return r.Replace(tmpl)
}

// Markup serialises the emoji. Image emojis become an <img> with the
// data-emoji-id attribute; unicode emojis are plain text and therefore not
// recoverable by entity-at-cursor lookup, which is acceptable: they need no
// structured round-trip.
func (e Emoji) Markup() (string, error) {
	if e.ImageURL != "" {
		alt := e.Shortcode
		if alt == "" {
			alt = ":" + e.Name + ":"
		}
		return fmt.Sprintf(`<img src="%s" alt="%s" %s="%s" %s="%s">`,
			html.EscapeString(e.ImageURL), html.EscapeString(alt),
			AttrEmojiID, html.EscapeString(e.ID),
			AttrEmojiName, html.EscapeString(e.Name)), nil
	}
	if e.Unicode == "" {
		return "", fmt.Errorf("entity: emoji %q has neither unicode nor image", e.ID)
	}
	return e.Unicode, nil
}
