package surface

import (
	"context"

	"editbridge/dom"
)

// Applier is the thin seam between the adapter and the live page. The real
// implementation evaluates JS in the editor tab; tests use a fake.
//
// Every method is a side effect on the page. None of them reads state back:
// the page reports through events, never through command returns.
type Applier interface {
	// InitEngine boots the contenteditable engine with the merged extension
	// options. Called once, after CSS injection, before cosmetics.
	InitEngine(ctx context.Context, options map[string]any) error

	// ExecCommand delegates a native editing command (bold, formatBlock,
	// insertHTML, ...) with an optional value.
	ExecCommand(ctx context.Context, name, value string) error

	// SetHTML replaces the whole document.
	SetHTML(ctx context.Context, html string) error

	// ApplyDocument replaces the document and places the caret. Used after
	// host-side restructuring so the page converges on the mirror.
	ApplyDocument(ctx context.Context, html string, caret dom.Snapshot) error

	// InjectCSS adds or replaces the custom stylesheet.
	InjectCSS(ctx context.Context, css string) error

	// SetAppearance applies cosmetic settings.
	SetAppearance(ctx context.Context, a Appearance) error

	// SaveCheckpoint records an explicit undo step on the engine.
	SaveCheckpoint(ctx context.Context) error

	SetInputEnabled(ctx context.Context, enabled bool) error
	Focus(ctx context.Context) error
	Blur(ctx context.Context) error
}
