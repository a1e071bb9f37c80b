// Package bridge carries typed notifications and command invocations across
// the isolation boundary between the host and the embedded editing surface.
//
// The boundary has no synchronous return path. Surface→host traffic is
// fire-and-forget notifications on named channels; host→surface traffic is
// command invocations. Read operations are a command that asks the surface
// to compute a value and notify it back on a dedicated channel.
//
// Duplicate delivery of an identical payload is tolerated by receivers
// (last-value-wins), and notifications sent before anyone listens are simply
// lost: the host re-derives current state from its own cache.
package bridge

import (
	"context"
	"encoding/json"
)

// Channel names, the wire contract between host and surface.
const (
	// ChanTextChange carries the full document HTML after a content change.
	ChanTextChange = "onTextChange"
	// ChanDecorationState carries the format identifiers active at the cursor.
	ChanDecorationState = "onDecorationState"
	// ChanMentionTrigger fires when a trigger sequence is detected at the cursor.
	ChanMentionTrigger = "onMentionTrigger"
	// ChanMentionHide tells the host to close any open suggestion UI.
	ChanMentionHide = "onMentionHide"
	// ChanMentionAtCursor carries the result of a getEntityAtCursor read.
	ChanMentionAtCursor = "getMentionAtCursor"
	// ChanAllMentions carries the result of a getAllMentions read.
	ChanAllMentions = "getAllMentions"
	// ChanEmojiSelected carries the emoji just inserted into the document.
	ChanEmojiSelected = "onEmojiSelected"
	// ChanHTML carries the result of a getHtml read.
	ChanHTML = "getHtml"
)

// Notification is a single surface→host message.
type Notification struct {
	Channel string `json:"channel"`
	// Seq is a monotonic sequence number assigned by the surface. Receivers
	// drop a payload whose sequence is not newer than the last applied one
	// on the same channel, so a reordered delivery cannot overwrite newer
	// cached state. Zero means unsequenced.
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Notifier delivers notifications surface→host, fire and forget.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Command is a host→surface invocation: an operation name plus JSON-encodable
// arguments. Commands have no return channel.
type Command struct {
	Name string `json:"name"`
	Args []any  `json:"args,omitempty"`
}

// Arg decodes the i-th argument into v. Arguments may arrive either as
// decoded values (in-process transport) or as raw JSON.
func (c Command) Arg(i int, v any) error {
	if i < 0 || i >= len(c.Args) {
		return ErrInvalidArgument
	}
	raw, err := json.Marshal(c.Args[i])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Invoker carries commands host→surface.
type Invoker interface {
	Invoke(ctx context.Context, cmd Command) error
}

// Listener consumes notifications delivered by a Router.
type Listener interface {
	HandleNotification(ctx context.Context, n Notification)
}
