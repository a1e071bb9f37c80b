package editor

import (
	"context"
	"encoding/json"
	"fmt"

	"editbridge/bridge"
	"editbridge/entity"
)

// --- content ---

// SetHTML replaces the document content. The markup is sanitised before it
// crosses the bridge.
func (c *Controller) SetHTML(ctx context.Context, html string) error {
	return c.invoke(ctx, "setHtml", entity.Sanitize(html))
}

// InsertHTML inserts sanitised markup at the cursor.
func (c *Controller) InsertHTML(ctx context.Context, html string) error {
	return c.invoke(ctx, "insertHtml", entity.Sanitize(html))
}

// GetHTML asks the surface for the current document and waits for the
// answer. The cache is updated as a side effect.
func (c *Controller) GetHTML(ctx context.Context) (string, error) {
	payload, err := c.request(ctx, "getHtml", bridge.ChanHTML)
	if err != nil {
		return "", err
	}
	var tc bridge.TextChange
	if err := json.Unmarshal(payload, &tc); err != nil {
		return "", fmt.Errorf("editor: getHtml result: %w", err)
	}
	return tc.HTML, nil
}

// --- formatting ---

func (c *Controller) SetBold(ctx context.Context) error          { return c.invoke(ctx, "setBold") }
func (c *Controller) SetItalic(ctx context.Context) error        { return c.invoke(ctx, "setItalic") }
func (c *Controller) SetUnderline(ctx context.Context) error     { return c.invoke(ctx, "setUnderline") }
func (c *Controller) SetStrikeThrough(ctx context.Context) error { return c.invoke(ctx, "setStrikeThrough") }
func (c *Controller) SetSubscript(ctx context.Context) error     { return c.invoke(ctx, "setSubscript") }
func (c *Controller) SetSuperscript(ctx context.Context) error   { return c.invoke(ctx, "setSuperscript") }
func (c *Controller) SetBlockquote(ctx context.Context) error    { return c.invoke(ctx, "setBlockquote") }
func (c *Controller) SetBullets(ctx context.Context) error       { return c.invoke(ctx, "setBullets") }
func (c *Controller) SetNumbers(ctx context.Context) error       { return c.invoke(ctx, "setNumbers") }
func (c *Controller) SetIndent(ctx context.Context) error        { return c.invoke(ctx, "setIndent") }
func (c *Controller) SetOutdent(ctx context.Context) error       { return c.invoke(ctx, "setOutdent") }
func (c *Controller) SetAlignLeft(ctx context.Context) error     { return c.invoke(ctx, "setAlignLeft") }
func (c *Controller) SetAlignCenter(ctx context.Context) error   { return c.invoke(ctx, "setAlignCenter") }
func (c *Controller) SetAlignRight(ctx context.Context) error    { return c.invoke(ctx, "setAlignRight") }

// SetHeading applies a heading level. Levels outside 1-6 are rejected
// before dispatch.
func (c *Controller) SetHeading(ctx context.Context, level int) error {
	if level < 1 || level > 6 {
		return fmt.Errorf("editor: heading level %d outside 1-6: %w", level, bridge.ErrInvalidArgument)
	}
	return c.invoke(ctx, "setHeading", level)
}

// SetFontSize applies an HTML font size. Sizes outside 1-7 are rejected
// before dispatch.
func (c *Controller) SetFontSize(ctx context.Context, size int) error {
	if size < 1 || size > 7 {
		return fmt.Errorf("editor: font size %d outside 1-7: %w", size, bridge.ErrInvalidArgument)
	}
	return c.invoke(ctx, "setFontSize", size)
}

func (c *Controller) SetTextColor(ctx context.Context, hex string) error {
	return c.invoke(ctx, "setTextColor", hex)
}

func (c *Controller) SetTextBackgroundColor(ctx context.Context, hex string) error {
	return c.invoke(ctx, "setTextBackgroundColor", hex)
}

// --- appearance ---

func (c *Controller) SetEditorFontColor(ctx context.Context, hex string) error {
	return c.invoke(ctx, "setEditorFontColor", hex)
}

func (c *Controller) SetEditorFontSize(ctx context.Context, px int) error {
	return c.invoke(ctx, "setEditorFontSize", px)
}

func (c *Controller) SetEditorBackgroundColor(ctx context.Context, hex string) error {
	return c.invoke(ctx, "setEditorBackgroundColor", hex)
}

func (c *Controller) SetPadding(ctx context.Context, left, top, right, bottom int) error {
	return c.invoke(ctx, "setPadding", left, top, right, bottom)
}

// --- media ---

// InsertImage inserts an image at the cursor. alt may be empty; width and
// height of 0 mean natural size.
func (c *Controller) InsertImage(ctx context.Context, url, alt string, width, height int) error {
	return c.invoke(ctx, "insertImage", url, alt, width, height)
}

func (c *Controller) InsertVideo(ctx context.Context, url string, width, height int) error {
	return c.invoke(ctx, "insertVideo", url, width, height)
}

func (c *Controller) InsertAudio(ctx context.Context, url string) error {
	return c.invoke(ctx, "insertAudio", url)
}

func (c *Controller) InsertYoutubeVideo(ctx context.Context, url string) error {
	return c.invoke(ctx, "insertYoutubeVideo", url)
}

func (c *Controller) InsertLink(ctx context.Context, href, title string) error {
	return c.invoke(ctx, "insertLink", href, title)
}

// InsertTodo inserts a checkbox item at the cursor.
func (c *Controller) InsertTodo(ctx context.Context) error {
	return c.invoke(ctx, "insertTodo")
}

// --- control ---

func (c *Controller) Undo(ctx context.Context) error         { return c.invoke(ctx, "undo") }
func (c *Controller) Redo(ctx context.Context) error         { return c.invoke(ctx, "redo") }
func (c *Controller) RemoveFormat(ctx context.Context) error { return c.invoke(ctx, "removeFormat") }
func (c *Controller) Focus(ctx context.Context) error        { return c.invoke(ctx, "focus") }
func (c *Controller) Blur(ctx context.Context) error         { return c.invoke(ctx, "blur") }

func (c *Controller) SetInputEnabled(ctx context.Context, enabled bool) error {
	return c.invoke(ctx, "setInputEnabled", enabled)
}
