package surface

import (
	"context"
	"encoding/json"
	"fmt"

	"editbridge/dom"
	"editbridge/surface/internal/browser"
)

// Binding is the CDP binding name the shell reports events through.
const Binding = "__editbridge"

// rodApplier implements Applier against the live editor tab. Each method is
// one JS evaluation of a window.editbridge function.
type rodApplier struct {
	tab *browser.Tab
}

func newRodApplier(tab *browser.Tab) *rodApplier {
	return &rodApplier{tab: tab}
}

func (r *rodApplier) InitEngine(ctx context.Context, options map[string]any) error {
	return r.tab.Eval(ctx, `(options) => window.editbridge.init(options)`, options)
}

func (r *rodApplier) ExecCommand(ctx context.Context, name, value string) error {
	// Native undo cannot see host-side restructurings; the shell keeps its
	// own checkpoint stack and consults it first.
	if name == "undo" {
		return r.tab.Eval(ctx, `() => window.editbridge.undo()`)
	}
	return r.tab.Eval(ctx, `(name, value) => window.editbridge.exec(name, value)`, name, value)
}

func (r *rodApplier) SetHTML(ctx context.Context, html string) error {
	return r.tab.Eval(ctx, `(html) => window.editbridge.setHtml(html)`, html)
}

func (r *rodApplier) ApplyDocument(ctx context.Context, html string, caret dom.Snapshot) error {
	path := caret.Path
	if path == nil {
		path = dom.Path{}
	}
	return r.tab.Eval(ctx,
		`(html, path, offset) => window.editbridge.applyDocument(html, path, offset)`,
		html, path, caret.Offset)
}

func (r *rodApplier) InjectCSS(ctx context.Context, css string) error {
	return r.tab.Eval(ctx, `(css) => window.editbridge.injectCss(css)`, css)
}

func (r *rodApplier) SetAppearance(ctx context.Context, a Appearance) error {
	return r.tab.Eval(ctx, `(a) => window.editbridge.setAppearance(a)`, appearanceArg(a))
}

func (r *rodApplier) SaveCheckpoint(ctx context.Context) error {
	return r.tab.Eval(ctx, `() => window.editbridge.saveCheckpoint()`)
}

func (r *rodApplier) SetInputEnabled(ctx context.Context, enabled bool) error {
	return r.tab.Eval(ctx, `(enabled) => window.editbridge.setInputEnabled(enabled)`, enabled)
}

func (r *rodApplier) Focus(ctx context.Context) error {
	return r.tab.Eval(ctx, `() => window.editbridge.focus()`)
}

func (r *rodApplier) Blur(ctx context.Context) error {
	return r.tab.Eval(ctx, `() => window.editbridge.blur()`)
}

// appearanceArg maps the Go struct to the camelCase shape the shell expects.
func appearanceArg(a Appearance) map[string]any {
	return map[string]any{
		"placeholder":     a.Placeholder,
		"fontColor":       a.FontColor,
		"fontSize":        a.FontSize,
		"backgroundColor": a.BackgroundColor,
		"padding": map[string]any{
			"left":   a.Padding.Left,
			"top":    a.Padding.Top,
			"right":  a.Padding.Right,
			"bottom": a.Padding.Bottom,
		},
	}
}

// decodeEvent parses one binding payload into an Event.
func decodeEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, fmt.Errorf("surface: decode event: %w", err)
	}
	return ev, nil
}
