// Package entity defines the structured references (mentions and emojis)
// that get serialised into document markup, and the reverse parsing that
// reads them back out.
//
// There is no persisted entity registry. Once inserted, an entity exists
// only as markup: an anchor carrying data-user-id/data-username, or an image
// carrying data-emoji-id. "Get all entities" operations re-scan the live
// document for those patterns.
package entity

// Data attributes that mark entity markup in the document.
const (
	AttrUserID      = "data-user-id"
	AttrUsername    = "data-username"
	AttrDisplayName = "data-display-name"
	AttrEmojiID     = "data-emoji-id"
	AttrEmojiName   = "data-emoji-name"
)

// User identifies a mentionable person.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Format selects how a mention is serialised into markup.
type Format string

const (
	// FormatText inserts the trigger plus username as plain text.
	FormatText Format = "text"
	// FormatLink inserts an anchor carrying the user data attributes.
	FormatLink Format = "link"
	// FormatCustomHTML renders the mention's Template with variable
	// substitution and sanitises the result.
	FormatCustomHTML Format = "customHtml"
	// FormatCustomWidget is like FormatCustomHTML but the host treats the
	// resulting element as an embedded widget rather than inline content.
	FormatCustomWidget Format = "customWidget"
)

// Mention is a user reference embeddable in the document.
type Mention struct {
	User    User   `json:"user"`
	Trigger string `json:"trigger"`
	Format  Format `json:"format,omitempty"`
	// Attributes are extra HTML attributes for link-format markup
	// (e.g. href, class).
	Attributes map[string]string `json:"attributes,omitempty"`
	// Template is the markup template for the custom formats. Variables:
	// {trigger} {username} {displayName} {userId} {avatarUrl} {role}.
	Template string `json:"template,omitempty"`
}

// Emoji is an emoji reference embeddable in the document. Unicode emojis
// serialise to plain text; image emojis serialise to an <img> carrying
// data-emoji-id.
type Emoji struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Shortcode string   `json:"shortcode,omitempty"`
	Unicode   string   `json:"unicode,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Category  string   `json:"category,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}
