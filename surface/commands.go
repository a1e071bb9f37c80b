package surface

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"time"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"

	"editbridge/bridge"
	"editbridge/cursor"
	"editbridge/dom"
	"editbridge/entity"
)

// Native engine commands keyed by bridge command name. Value-less.
var nativeCommands = map[string]string{
	"setBold":          "bold",
	"setItalic":        "italic",
	"setUnderline":     "underline",
	"setStrikeThrough": "strikeThrough",
	"setSubscript":     "subscript",
	"setSuperscript":   "superscript",
	"setBullets":       "insertUnorderedList",
	"setNumbers":       "insertOrderedList",
	"setIndent":        "indent",
	"setOutdent":       "outdent",
	"setAlignLeft":     "justifyLeft",
	"setAlignCenter":   "justifyCenter",
	"setAlignRight":    "justifyRight",
	"undo":             "undo",
	"redo":             "redo",
	"removeFormat":     "removeFormat",
}

const dismissQuiet = 30 * time.Second

// Invoke implements bridge.Invoker: it dispatches a host command against
// the live page and the mirror. Unknown commands are an error so a host
// typo surfaces instead of silently no-opping.
func (a *Adapter) Invoke(ctx context.Context, cmd bridge.Command) error {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if !started {
		return fmt.Errorf("surface: %s: %w", cmd.Name, bridge.ErrUnavailable)
	}

	if native, ok := nativeCommands[cmd.Name]; ok {
		return a.applier.ExecCommand(ctx, native, "")
	}

	switch cmd.Name {
	case "setHtml":
		return a.setHTML(ctx, cmd)
	case "insertHtml":
		var markup string
		if err := cmd.Arg(0, &markup); err != nil {
			return err
		}
		return a.applier.ExecCommand(ctx, "insertHTML", markup)

	case "setBlockquote":
		return a.applier.ExecCommand(ctx, "formatBlock", "<blockquote>")
	case "setHeading":
		var level int
		if err := cmd.Arg(0, &level); err != nil {
			return err
		}
		return a.applier.ExecCommand(ctx, "formatBlock", fmt.Sprintf("<h%d>", level))
	case "setFontSize":
		var size int
		if err := cmd.Arg(0, &size); err != nil {
			return err
		}
		return a.applier.ExecCommand(ctx, "fontSize", strconv.Itoa(size))
	case "setTextColor":
		return a.execWithStringArg(ctx, cmd, "foreColor")
	case "setTextBackgroundColor":
		return a.execWithStringArg(ctx, cmd, "hiliteColor")

	case "setEditorFontColor", "setEditorFontSize", "setEditorBackgroundColor", "setPadding":
		return a.setAppearance(ctx, cmd)

	case "insertImage":
		return a.insertImage(ctx, cmd)
	case "insertVideo":
		return a.insertVideo(ctx, cmd)
	case "insertAudio":
		return a.insertMediaURL(ctx, cmd, `<audio controls src="%s"></audio>`)
	case "insertYoutubeVideo":
		return a.insertMediaURL(ctx, cmd,
			`<iframe src="%s" frameborder="0" allowfullscreen></iframe>`)
	case "insertLink":
		return a.insertLink(ctx, cmd)
	case "insertTodo":
		return a.applier.ExecCommand(ctx, "insertHTML",
			`<div><input type="checkbox"> </div>`)

	case "insertMention":
		return a.insertMention(ctx, cmd)
	case "insertEmoji":
		return a.insertEmoji(ctx, cmd)
	case "removeMention":
		return a.removeMention(ctx, cmd)
	case "updateMention":
		return a.updateMention(ctx, cmd)
	case "dismissSuggestions":
		a.mu.Lock()
		a.detector.Dismiss(dismissQuiet)
		a.mu.Unlock()
		return nil

	case "getHtml":
		a.out.Publish(bridge.ChanHTML, bridge.MarshalPayload(bridge.TextChange{HTML: a.HTML()}))
		return nil
	case "getAllMentions":
		return a.publishAllMentions()
	case "getMentionAtCursor":
		return a.publishEntityAtCursor()

	case "focus":
		return a.applier.Focus(ctx)
	case "blur":
		return a.applier.Blur(ctx)
	case "setInputEnabled":
		var enabled bool
		if err := cmd.Arg(0, &enabled); err != nil {
			return err
		}
		return a.applier.SetInputEnabled(ctx, enabled)

	default:
		return fmt.Errorf("surface: unknown command %q: %w", cmd.Name, bridge.ErrInvalidArgument)
	}
}

func (a *Adapter) execWithStringArg(ctx context.Context, cmd bridge.Command, native string) error {
	var value string
	if err := cmd.Arg(0, &value); err != nil {
		return err
	}
	return a.applier.ExecCommand(ctx, native, value)
}

func (a *Adapter) setHTML(ctx context.Context, cmd bridge.Command) error {
	var markup string
	if err := cmd.Arg(0, &markup); err != nil {
		return err
	}
	root, err := dom.ParseBody(markup)
	if err != nil {
		return fmt.Errorf("surface: setHtml: %w", err)
	}

	a.mu.Lock()
	a.root = root
	a.lastHTML = markup
	a.caret = dom.Snapshot{}
	a.mu.Unlock()

	if err := a.applier.SetHTML(ctx, markup); err != nil {
		return err
	}
	a.out.Publish(bridge.ChanTextChange, bridge.MarshalPayload(bridge.TextChange{HTML: markup}))
	return nil
}

func (a *Adapter) setAppearance(ctx context.Context, cmd bridge.Command) error {
	a.mu.Lock()
	ap := a.appearance
	a.mu.Unlock()

	switch cmd.Name {
	case "setEditorFontColor":
		if err := cmd.Arg(0, &ap.FontColor); err != nil {
			return err
		}
	case "setEditorFontSize":
		if err := cmd.Arg(0, &ap.FontSize); err != nil {
			return err
		}
	case "setEditorBackgroundColor":
		if err := cmd.Arg(0, &ap.BackgroundColor); err != nil {
			return err
		}
	case "setPadding":
		for i, dst := range []*int{&ap.Padding.Left, &ap.Padding.Top, &ap.Padding.Right, &ap.Padding.Bottom} {
			if err := cmd.Arg(i, dst); err != nil {
				return err
			}
		}
	}

	a.mu.Lock()
	a.appearance = ap
	a.mu.Unlock()
	return a.applier.SetAppearance(ctx, ap)
}

func (a *Adapter) insertImage(ctx context.Context, cmd bridge.Command) error {
	var url, alt string
	var width, height int
	if err := cmd.Arg(0, &url); err != nil {
		return err
	}
	cmd.Arg(1, &alt)
	cmd.Arg(2, &width)
	cmd.Arg(3, &height)

	markup := fmt.Sprintf(`<img src="%s"`, html.EscapeString(url))
	if alt != "" {
		markup += fmt.Sprintf(` alt="%s"`, html.EscapeString(alt))
	}
	if width > 0 {
		markup += fmt.Sprintf(` width="%d"`, width)
	}
	if height > 0 {
		markup += fmt.Sprintf(` height="%d"`, height)
	}
	markup += ">"
	return a.applier.ExecCommand(ctx, "insertHTML", markup)
}

func (a *Adapter) insertVideo(ctx context.Context, cmd bridge.Command) error {
	var url string
	var width, height int
	if err := cmd.Arg(0, &url); err != nil {
		return err
	}
	cmd.Arg(1, &width)
	cmd.Arg(2, &height)

	markup := fmt.Sprintf(`<video controls src="%s"`, html.EscapeString(url))
	if width > 0 {
		markup += fmt.Sprintf(` width="%d"`, width)
	}
	if height > 0 {
		markup += fmt.Sprintf(` height="%d"`, height)
	}
	markup += "></video>"
	return a.applier.ExecCommand(ctx, "insertHTML", markup)
}

func (a *Adapter) insertMediaURL(ctx context.Context, cmd bridge.Command, format string) error {
	var url string
	if err := cmd.Arg(0, &url); err != nil {
		return err
	}
	return a.applier.ExecCommand(ctx, "insertHTML", fmt.Sprintf(format, html.EscapeString(url)))
}

func (a *Adapter) insertLink(ctx context.Context, cmd bridge.Command) error {
	var href, title string
	if err := cmd.Arg(0, &href); err != nil {
		return err
	}
	cmd.Arg(1, &title)
	if title == "" {
		title = href
	}
	markup := fmt.Sprintf(`<a href="%s">%s</a>`,
		html.EscapeString(href), html.EscapeString(title))
	return a.applier.ExecCommand(ctx, "insertHTML", markup)
}

// insertEntity splices entity markup over the active trigger span in the
// mirror and applies the result to the page. The span is re-detected at the
// current caret; a span captured when the suggestion UI opened may be stale
// by the time the user picks an entry.
func (a *Adapter) insertEntity(ctx context.Context, markup string) error {
	fragment, err := dom.ParseFragment(markup)
	if err != nil {
		return fmt.Errorf("surface: parse entity markup: %w", err)
	}

	a.mu.Lock()
	root := a.root
	node, offset := dom.Restore(root, a.caret)

	var snap dom.Snapshot
	spliced := false
	if node != nil && node.Type == xhtml.TextNode {
		if ev := a.detectInNode(node, offset); ev != nil {
			snap, err = dom.ReplaceTextSpan(root, node, ev.Position, offset, fragment)
			if err == nil {
				spliced = true
			}
		}
	}
	if spliced {
		a.caret = snap
		a.lastHTML = dom.RenderChildren(root)
	}
	htmlOut := a.lastHTML
	a.detector.MarkInserted()
	a.mu.Unlock()

	if !spliced {
		// No active trigger span: plain insertion at the cursor.
		if err := a.applier.ExecCommand(ctx, "insertHTML", markup+" "); err != nil {
			return err
		}
		a.out.Publish(bridge.ChanMentionHide, bridge.MarshalPayload(bridge.MentionHide{}))
		return nil
	}

	if err := a.applier.ApplyDocument(ctx, htmlOut, snap); err != nil {
		return err
	}
	a.out.Publish(bridge.ChanMentionHide, bridge.MarshalPayload(bridge.MentionHide{}))
	a.out.Publish(bridge.ChanTextChange, bridge.MarshalPayload(bridge.TextChange{HTML: htmlOut}))
	return nil
}

// detectInNode runs trigger detection inside a single text node, with the
// caret at the given rune offset. Caller holds a.mu.
func (a *Adapter) detectInNode(node *xhtml.Node, offset int) *cursor.Event {
	for _, t := range a.cfg.Triggers {
		r, _ := utf8.DecodeRuneInString(t)
		if r == utf8.RuneError {
			continue
		}
		if ev := cursor.Detect(node.Data, offset, r, a.cfg.TriggerWindow); ev != nil {
			return ev
		}
	}
	return nil
}

func (a *Adapter) insertMention(ctx context.Context, cmd bridge.Command) error {
	var m entity.Mention
	if err := cmd.Arg(0, &m); err != nil {
		return err
	}
	markup, err := m.Markup()
	if err != nil {
		return fmt.Errorf("surface: mention markup: %w", err)
	}
	return a.insertEntity(ctx, markup)
}

func (a *Adapter) insertEmoji(ctx context.Context, cmd bridge.Command) error {
	var e entity.Emoji
	if err := cmd.Arg(0, &e); err != nil {
		return err
	}
	markup, err := e.Markup()
	if err != nil {
		return fmt.Errorf("surface: emoji markup: %w", err)
	}
	if err := a.insertEntity(ctx, markup); err != nil {
		return err
	}
	a.out.Publish(bridge.ChanEmojiSelected, bridge.MarshalPayload(e))
	return nil
}

// removeMention unwraps every mention of the user back to its plain text.
func (a *Adapter) removeMention(ctx context.Context, cmd bridge.Command) error {
	var userID string
	if err := cmd.Arg(0, &userID); err != nil {
		return err
	}

	a.mu.Lock()
	root := a.root
	changed := false
	var unwrap func(n *xhtml.Node)
	unwrap = func(n *xhtml.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if entity.IsMentionNode(c) {
				if m := entity.MentionFromNode(c); m != nil && m.User.ID == userID {
					text := &xhtml.Node{Type: xhtml.TextNode, Data: dom.Text(c)}
					n.InsertBefore(text, c)
					n.RemoveChild(c)
					changed = true
					c = next
					continue
				}
			}
			unwrap(c)
			c = next
		}
	}
	unwrap(root)

	if !changed {
		a.mu.Unlock()
		return nil
	}
	htmlOut := dom.RenderChildren(root)
	a.lastHTML = htmlOut
	caret := a.caret
	a.mu.Unlock()

	if err := a.applier.ApplyDocument(ctx, htmlOut, caret); err != nil {
		return err
	}
	a.out.Publish(bridge.ChanTextChange, bridge.MarshalPayload(bridge.TextChange{HTML: htmlOut}))
	return nil
}

// updateMention rewrites the markup of every mention of the user, keeping
// the trigger each occurrence was inserted with.
func (a *Adapter) updateMention(ctx context.Context, cmd bridge.Command) error {
	var u entity.User
	if err := cmd.Arg(0, &u); err != nil {
		return err
	}

	a.mu.Lock()
	root := a.root
	changed := false
	var rewrite func(n *xhtml.Node)
	rewrite = func(n *xhtml.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if entity.IsMentionNode(c) {
				if m := entity.MentionFromNode(c); m != nil && m.User.ID == u.ID {
					m.User = u
					if markup, err := m.Markup(); err == nil {
						if frag, err := dom.ParseFragment(markup); err == nil && len(frag) > 0 {
							for _, fn := range frag {
								fn.Parent = nil
								fn.PrevSibling = nil
								fn.NextSibling = nil
								n.InsertBefore(fn, c)
							}
							n.RemoveChild(c)
							changed = true
						}
					}
					c = next
					continue
				}
			}
			rewrite(c)
			c = next
		}
	}
	rewrite(root)

	if !changed {
		a.mu.Unlock()
		return nil
	}
	htmlOut := dom.RenderChildren(root)
	a.lastHTML = htmlOut
	caret := a.caret
	a.mu.Unlock()

	if err := a.applier.ApplyDocument(ctx, htmlOut, caret); err != nil {
		return err
	}
	a.out.Publish(bridge.ChanTextChange, bridge.MarshalPayload(bridge.TextChange{HTML: htmlOut}))
	return nil
}

func (a *Adapter) publishAllMentions() error {
	mentions, err := entity.ParseMentions(a.HTML())
	if err != nil {
		return fmt.Errorf("surface: scan mentions: %w", err)
	}
	if mentions == nil {
		mentions = []entity.Mention{}
	}
	a.out.Publish(bridge.ChanAllMentions, bridge.MarshalPayload(mentions))
	return nil
}

func (a *Adapter) publishEntityAtCursor() error {
	a.mu.Lock()
	root := a.root
	node, _ := dom.Restore(root, a.caret)
	var at bridge.EntityAtCursor
	at.Kind = "none"
	if node != nil {
		if anc := entity.Ancestor(root, node); anc != nil {
			if m := entity.MentionFromNode(anc); m != nil {
				at = bridge.EntityAtCursor{Kind: "mention", Mention: m}
			} else if e := entity.EmojiFromNode(anc); e != nil {
				at = bridge.EntityAtCursor{Kind: "emoji", Emoji: e}
			}
		}
	}
	a.mu.Unlock()

	a.out.Publish(bridge.ChanMentionAtCursor, bridge.MarshalPayload(at))
	return nil
}
