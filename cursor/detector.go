package cursor

import "time"

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	// Triggers are the characters that begin a sequence. Default: '@'.
	Triggers []rune
	// Window is the backward scan budget in runes. Default: Window.
	Window int
	// InsertQuiet is how long detection stays suppressed after an entity
	// insertion. Without it, the trailing space or the entity's own text
	// can spuriously re-trigger before the UI has settled. Default: 500ms.
	InsertQuiet time.Duration
	// Now is the clock, injectable for tests. Default: time.Now.
	Now func() time.Time
}

func (dc *DetectorConfig) defaults() {
	if len(dc.Triggers) == 0 {
		dc.Triggers = []rune{'@'}
	}
	if dc.Window <= 0 {
		dc.Window = Window
	}
	if dc.InsertQuiet <= 0 {
		dc.InsertQuiet = 500 * time.Millisecond
	}
	if dc.Now == nil {
		dc.Now = time.Now
	}
}

// Detector evaluates keystroke-class events against the configured trigger
// set and tracks the two suppression windows: just-inserted and manual
// dismissal. Both are expiring flags; setting one resets any pending expiry.
//
// A Detector is not safe for concurrent use; callers serialize access.
type Detector struct {
	cfg           DetectorConfig
	insertedUntil time.Time
	dismissUntil  time.Time
}

// NewDetector creates a Detector.
func NewDetector(cfg DetectorConfig) *Detector {
	cfg.defaults()
	return &Detector{cfg: cfg}
}

// Scan re-runs detection over the text window ending at the cursor.
// It returns the active trigger event, or (nil, true) when any previously
// shown suggestion UI must be hidden. (nil, false) means "no signal": the
// detector is inside a suppression window and the host should do nothing.
//
// The caller passes the window text and the cursor's rune offset within it;
// the event's Position is relative to that same window.
func (d *Detector) Scan(text string, pos int) (ev *Event, hide bool) {
	now := d.cfg.Now()
	if now.Before(d.insertedUntil) {
		return nil, false
	}

	for _, trigger := range d.cfg.Triggers {
		if ev := Detect(text, pos, trigger, d.cfg.Window); ev != nil {
			if now.Before(d.dismissUntil) {
				// Manually dismissed; stay quiet until the run changes
				// or the window expires.
				return nil, false
			}
			return ev, false
		}
	}

	// Leaving the trigger run clears a manual dismissal.
	d.dismissUntil = time.Time{}
	return nil, true
}

// MarkInserted starts (or restarts) the post-insert quiet window.
func (d *Detector) MarkInserted() {
	d.insertedUntil = d.cfg.Now().Add(d.cfg.InsertQuiet)
}

// Dismiss suppresses suggestions for dur, e.g. after the user closed the
// suggestion sheet without picking an entry.
func (d *Detector) Dismiss(dur time.Duration) {
	d.dismissUntil = d.cfg.Now().Add(dur)
}
