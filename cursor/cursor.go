// Package cursor implements trigger-sequence detection relative to a live
// caret. Given a bounded window of text ending at the cursor, it recognises
// sequences like "@query" by scanning backward until it hits the trigger
// character or a whitespace boundary, whichever comes first.
//
// All positions are rune offsets, not byte offsets. Payloads crossing the
// bridge state this explicitly; a multi-byte character before the trigger
// must not shift the reported position.
package cursor

import (
	"strings"
)

// Window is the default number of runes scanned backward from the cursor.
const Window = 50

// Event describes a detected trigger sequence at the cursor.
//
// An Event is valid only while the cursor remains inside the contiguous
// non-whitespace run that produced it. It is recomputed on every
// keystroke-class event and never persisted.
type Event struct {
	// Trigger is the character that started the sequence (e.g. '@').
	Trigger rune
	// Query is the trimmed text between the trigger and the cursor.
	Query string
	// Position is the rune offset of the trigger character within the
	// scanned window.
	Position int
	// HasSpaceBefore reports whether the character immediately preceding
	// the trigger is whitespace or start-of-text. It distinguishes a fresh
	// trigger from one embedded mid-word ("hello @x" vs "hello@x").
	HasSpaceBefore bool
}

// Detect scans backward from pos in text looking for trigger. It returns nil
// when a whitespace boundary is reached first, when pos is out of range, or
// when the scan budget (window runes) is exhausted before either is found.
// Start-of-text counts as an implicit whitespace boundary.
//
// A trigger with a zero-length query is still active; minimum-length
// thresholds are a UI concern, not a detection concern.
func Detect(text string, pos int, trigger rune, window int) *Event {
	if window <= 0 {
		window = Window
	}
	runes := []rune(text)
	if pos < 0 || pos > len(runes) {
		return nil
	}

	floor := pos - window
	if floor < 0 {
		floor = 0
	}

	for i := pos - 1; i >= floor; i-- {
		r := runes[i]
		if isBoundary(r) {
			return nil
		}
		if r == trigger {
			return &Event{
				Trigger:        trigger,
				Query:          strings.TrimSpace(string(runes[i+1 : pos])),
				Position:       i,
				HasSpaceBefore: i == 0 || isBoundary(runes[i-1]),
			}
		}
	}

	// Budget exhausted without finding a boundary or the trigger. A
	// truncated window must not produce a match based on partial context.
	return nil
}

// isBoundary reports whether r terminates a trigger run.
func isBoundary(r rune) bool {
	switch r {
	case ' ', '\n', '\t', '\r', '\u00a0':
		return true
	}
	return false
}
