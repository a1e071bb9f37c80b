package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"editbridge/entity"
)

// TextChange is the payload of ChanTextChange and ChanHTML.
type TextChange struct {
	HTML string `json:"html"`
}

// DecorationState is the payload of ChanDecorationState: the format
// identifiers active at the cursor (e.g. "bold", "justifyLeft") plus the
// current block format (e.g. "blockquote", "h2").
type DecorationState struct {
	Formats     []string `json:"formats"`
	FormatBlock string   `json:"formatBlock,omitempty"`
}

// MentionTrigger is the payload of ChanMentionTrigger.
type MentionTrigger struct {
	Query   string `json:"query"`
	Trigger string `json:"trigger"`
}

// MentionHide is the (empty) payload of ChanMentionHide.
type MentionHide struct{}

// EntityAtCursor is the payload of ChanMentionAtCursor. Kind discriminates
// the variant: "mention", "emoji" or "none".
type EntityAtCursor struct {
	Kind    string          `json:"kind"`
	Mention *entity.Mention `json:"mention,omitempty"`
	Emoji   *entity.Emoji   `json:"emoji,omitempty"`
}

// Parse decodes a notification's payload into its channel's typed form.
// The schema is discriminated by channel name; an unknown channel or
// malformed JSON is a parse failure the receiver logs and drops without
// affecting other channels.
func Parse(n Notification) (any, error) {
	switch n.Channel {
	case ChanTextChange, ChanHTML:
		var p TextChange
		if err := unmarshal(n, &p); err != nil {
			return nil, err
		}
		return p, nil

	case ChanDecorationState:
		return parseDecoration(n)

	case ChanMentionTrigger:
		var p MentionTrigger
		if err := unmarshal(n, &p); err != nil {
			return nil, err
		}
		return p, nil

	case ChanMentionHide:
		return MentionHide{}, nil

	case ChanMentionAtCursor:
		var p EntityAtCursor
		if err := unmarshal(n, &p); err != nil {
			return nil, err
		}
		return p, nil

	case ChanAllMentions:
		var p []entity.Mention
		if err := unmarshal(n, &p); err != nil {
			return nil, err
		}
		return p, nil

	case ChanEmojiSelected:
		var p entity.Emoji
		if err := unmarshal(n, &p); err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("bridge: unknown channel %q", n.Channel)
	}
}

// parseDecoration accepts both wire shapes: the structured object and the
// legacy comma-joined string of format identifiers.
func parseDecoration(n Notification) (DecorationState, error) {
	var p DecorationState
	if err := json.Unmarshal(n.Payload, &p); err == nil {
		return p, nil
	}
	var joined string
	if err := json.Unmarshal(n.Payload, &joined); err != nil {
		return DecorationState{}, fmt.Errorf("bridge: channel %s: malformed payload", n.Channel)
	}
	for _, f := range strings.Split(joined, ",") {
		if f = strings.TrimSpace(f); f != "" {
			p.Formats = append(p.Formats, f)
		}
	}
	return p, nil
}

func unmarshal(n Notification, v any) error {
	if err := json.Unmarshal(n.Payload, v); err != nil {
		return fmt.Errorf("bridge: channel %s: %w", n.Channel, err)
	}
	return nil
}

// MarshalPayload encodes a typed payload for the wire.
func MarshalPayload(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Payload types are plain structs; this cannot fail at runtime.
		panic(fmt.Sprintf("bridge: marshal payload: %v", err))
	}
	return data
}
