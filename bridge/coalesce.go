package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Default debounce windows per channel class.
const (
	DefaultContentWindow = 100 * time.Millisecond
	DefaultStateWindow   = 50 * time.Millisecond
)

// Coalescer debounces per-channel notifications before they reach the
// Notifier. For a debounced channel only the latest value within the window
// is delivered, and only when it differs from the last value sent on that
// channel. That last part breaks the feedback loop where a notification triggers a
// host re-render that triggers another mutation and so on.
//
// Channels without a configured window pass through immediately and are
// never deduplicated: read-result channels must answer every request even
// when the value is unchanged.
type Coalescer struct {
	out     Notifier
	logger  *slog.Logger
	seq     atomic.Uint64
	mu      sync.Mutex
	windows map[string]time.Duration
	state   map[string]*coalesced
}

type coalesced struct {
	timer    *time.Timer
	pending  json.RawMessage
	lastSent json.RawMessage
}

// CoalescerOption configures a Coalescer.
type CoalescerOption func(*Coalescer)

// WithWindow sets the debounce window for a channel. Zero disables
// debouncing for it.
func WithWindow(channel string, window time.Duration) CoalescerOption {
	return func(c *Coalescer) {
		if window > 0 {
			c.windows[channel] = window
		}
	}
}

// NewCoalescer creates a Coalescer with the default windows for the
// content and decoration-state channels.
func NewCoalescer(out Notifier, logger *slog.Logger, opts ...CoalescerOption) *Coalescer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coalescer{
		out:    out,
		logger: logger,
		windows: map[string]time.Duration{
			ChanTextChange:      DefaultContentWindow,
			ChanDecorationState: DefaultStateWindow,
		},
		state: make(map[string]*coalesced),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Publish queues (or immediately sends) a payload on a channel.
func (c *Coalescer) Publish(channel string, payload json.RawMessage) {
	c.mu.Lock()

	window, debounced := c.windows[channel]
	if !debounced {
		c.mu.Unlock()
		c.send(channel, payload)
		return
	}

	st := c.state[channel]
	if st == nil {
		st = &coalesced{}
		c.state[channel] = st
	}
	st.pending = payload

	// (Re)arm the window timer: only the last value within the window is
	// ever delivered.
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(window, func() { c.flush(channel) })
	c.mu.Unlock()
}

// flush delivers a debounced channel's pending value if it changed.
func (c *Coalescer) flush(channel string) {
	c.mu.Lock()
	st := c.state[channel]
	if st == nil || st.pending == nil {
		c.mu.Unlock()
		return
	}
	payload := st.pending
	st.pending = nil
	if bytes.Equal(payload, st.lastSent) {
		c.mu.Unlock()
		return
	}
	st.lastSent = payload
	c.mu.Unlock()

	c.send(channel, payload)
}

// Flush forces out all pending values, e.g. on shutdown.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	channels := make([]string, 0, len(c.state))
	for ch, st := range c.state {
		if st.timer != nil {
			st.timer.Stop()
		}
		channels = append(channels, ch)
	}
	c.mu.Unlock()

	for _, ch := range channels {
		c.flush(ch)
	}
}

func (c *Coalescer) send(channel string, payload json.RawMessage) {
	n := Notification{Channel: channel, Seq: c.seq.Add(1), Payload: payload}
	if err := c.out.Notify(context.Background(), n); err != nil {
		c.logger.Error("bridge: notify failed", "channel", channel, "error", err)
	}
}
