package surface

import "editbridge/dom"

// Event kinds emitted by the shell JS over the CDP binding.
const (
	EventReady     = "ready"
	EventInput     = "input"
	EventSelection = "selection"
	EventQuoteExit = "quoteExit"
)

// Event is one serialized surface event. The shell sends the full document
// HTML with every input so the mirror never drifts; selection events carry
// only the caret and decoration state.
type Event struct {
	Kind string `json:"kind"`

	// HTML is the full document body markup (input events).
	HTML string `json:"html"`

	// Path and Offset locate the caret: child-index path from the editor
	// root plus a rune offset in the addressed text node.
	Path   dom.Path `json:"path"`
	Offset int      `json:"offset"`

	// Formats and FormatBlock describe decoration state at the caret
	// (selection events).
	Formats     []string `json:"formats"`
	FormatBlock string   `json:"formatBlock"`
}
