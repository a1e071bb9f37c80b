package editor

import (
	"context"
	"encoding/json"
	"fmt"

	"editbridge/bridge"
	"editbridge/entity"
)

// InsertMention replaces the active trigger span with mention markup. The
// surface locates the span relative to the cursor; if no trigger is active
// the mention is inserted at the cursor as-is. A trailing space always
// follows the inserted node.
func (c *Controller) InsertMention(ctx context.Context, m entity.Mention) error {
	if m.User.ID == "" {
		return fmt.Errorf("editor: mention without user id: %w", bridge.ErrInvalidArgument)
	}
	return c.invoke(ctx, "insertMention", m)
}

// InsertEmoji inserts emoji markup at the cursor, replacing the active
// trigger span when one exists.
func (c *Controller) InsertEmoji(ctx context.Context, e entity.Emoji) error {
	if e.ID == "" && e.Unicode == "" {
		return fmt.Errorf("editor: emoji without id or unicode: %w", bridge.ErrInvalidArgument)
	}
	return c.invoke(ctx, "insertEmoji", e)
}

// GetEntityAtCursor reports the mention or emoji node the cursor currently
// sits inside, if any.
func (c *Controller) GetEntityAtCursor(ctx context.Context) (bridge.EntityAtCursor, error) {
	payload, err := c.request(ctx, "getMentionAtCursor", bridge.ChanMentionAtCursor)
	if err != nil {
		return bridge.EntityAtCursor{}, err
	}
	var at bridge.EntityAtCursor
	if err := json.Unmarshal(payload, &at); err != nil {
		return bridge.EntityAtCursor{}, fmt.Errorf("editor: entity at cursor: %w", err)
	}
	return at, nil
}

// GetAllMentions lists every mention in the document, in document order.
func (c *Controller) GetAllMentions(ctx context.Context) ([]entity.Mention, error) {
	payload, err := c.request(ctx, "getAllMentions", bridge.ChanAllMentions)
	if err != nil {
		return nil, err
	}
	var mentions []entity.Mention
	if err := json.Unmarshal(payload, &mentions); err != nil {
		return nil, fmt.Errorf("editor: all mentions: %w", err)
	}
	return mentions, nil
}

// RemoveMention unwraps every mention of the given user back to plain text.
func (c *Controller) RemoveMention(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("editor: remove mention without user id: %w", bridge.ErrInvalidArgument)
	}
	return c.invoke(ctx, "removeMention", userID)
}

// UpdateMention rewrites the markup of every mention of the given user,
// e.g. after a display-name change.
func (c *Controller) UpdateMention(ctx context.Context, u entity.User) error {
	if u.ID == "" {
		return fmt.Errorf("editor: update mention without user id: %w", bridge.ErrInvalidArgument)
	}
	return c.invoke(ctx, "updateMention", u)
}

// DismissSuggestions tells the surface the host closed its suggestion UI;
// detection stays quiet until the cursor leaves the current trigger run.
func (c *Controller) DismissSuggestions(ctx context.Context) error {
	return c.invoke(ctx, "dismissSuggestions")
}
