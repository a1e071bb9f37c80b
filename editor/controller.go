// Package editor presents the host-facing document controller: typed
// operations (formatting, content get/set, entity insertion) over the
// asynchronous bridge, backed by a document-state cache.
//
// The cache is the host's view of the document. It is mutated only by
// confirmed notifications from the editing surface, never optimistically
// from commands, so it is eventually consistent with the true document.
//
// Usage:
//
//	ctrl := editor.New(editor.Config{Invoker: inv})
//	router.Attach(ctrl)       // receive surface notifications
//	ctrl.OnContentChange(func(html string) { ... })
//	ctrl.SetBold(ctx)
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"editbridge/bridge"
	"editbridge/entity"
)

// Config configures a Controller.
type Config struct {
	// Invoker carries commands to the surface. Wrap with a RetryInvoker so
	// transient unavailability is absorbed.
	Invoker bridge.Invoker
	// ReadTimeout bounds the request/poll wait of read operations.
	// Default: 2s.
	ReadTimeout time.Duration
	// ReadyTimeout bounds how long an operation waits for the surface to
	// become ready before giving up. Default: 10s.
	ReadyTimeout time.Duration
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 2 * time.Second
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Controller is the host-side document façade.
type Controller struct {
	cfg Config
	inv bridge.Invoker

	mu      sync.Mutex
	html    string
	formats map[string]bool
	block   string
	lastSeq map[string]uint64
	waiters map[string][]chan []byte
	readyCh chan struct{}
	ready   bool

	onContent []func(string)
	onFormats []func([]string)
	onTrigger []func(query, trigger string)
	onHide    []func()
	onEmoji   []func(entity.Emoji)
}

// New creates a Controller. Attach it to the bridge router to receive
// notifications.
func New(cfg Config) *Controller {
	cfg.defaults()
	return &Controller{
		cfg:     cfg,
		inv:     cfg.Invoker,
		formats: make(map[string]bool),
		lastSeq: make(map[string]uint64),
		waiters: make(map[string][]chan []byte),
		readyCh: make(chan struct{}),
	}
}

// SetReady marks the surface as initialised. Operations issued earlier are
// released; they were waiting, not dropped.
func (c *Controller) SetReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		c.ready = true
		close(c.readyCh)
	}
}

// Ready reports whether the surface has signalled readiness.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// HTML returns the last-known document content from the cache.
func (c *Controller) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

// ActiveFormats returns the format identifiers active at the cursor, sorted.
func (c *Controller) ActiveFormats() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.formats))
	for f := range c.formats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// BlockFormat returns the block format at the cursor, e.g. "blockquote"
// or "h2". Empty when the cursor is in a plain paragraph.
func (c *Controller) BlockFormat() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block
}

// OnContentChange registers a content-changed observer.
func (c *Controller) OnContentChange(fn func(html string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onContent = append(c.onContent, fn)
}

// OnFormatState registers a format-state-changed observer.
func (c *Controller) OnFormatState(fn func(formats []string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFormats = append(c.onFormats, fn)
}

// OnMentionTrigger registers an observer for detected trigger sequences;
// the host typically opens a suggestion UI.
func (c *Controller) OnMentionTrigger(fn func(query, trigger string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTrigger = append(c.onTrigger, fn)
}

// OnMentionHide registers an observer for hide signals.
func (c *Controller) OnMentionHide(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHide = append(c.onHide, fn)
}

// OnEmojiSelected registers an observer for emoji insertions confirmed by
// the surface.
func (c *Controller) OnEmojiSelected(fn func(entity.Emoji)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEmoji = append(c.onEmoji, fn)
}

// HandleNotification implements bridge.Listener. Malformed payloads are
// logged and dropped; they affect neither other channels nor the controller.
func (c *Controller) HandleNotification(ctx context.Context, n bridge.Notification) {
	c.mu.Lock()
	if n.Seq != 0 && n.Seq <= c.lastSeq[n.Channel] {
		c.mu.Unlock()
		c.cfg.Logger.Debug("editor: stale notification dropped",
			"channel", n.Channel, "seq", n.Seq)
		return
	}
	if n.Seq != 0 {
		c.lastSeq[n.Channel] = n.Seq
	}
	c.mu.Unlock()

	v, err := bridge.Parse(n)
	if err != nil {
		c.cfg.Logger.Warn("editor: malformed notification dropped",
			"channel", n.Channel, "error", err)
		return
	}

	switch p := v.(type) {
	case bridge.TextChange:
		c.mu.Lock()
		c.html = p.HTML
		observers := append([]func(string){}, c.onContent...)
		c.mu.Unlock()
		c.resolve(n.Channel, n.Payload)
		if n.Channel == bridge.ChanTextChange {
			for _, fn := range observers {
				fn(p.HTML)
			}
		}

	case bridge.DecorationState:
		c.mu.Lock()
		c.formats = make(map[string]bool, len(p.Formats))
		for _, f := range p.Formats {
			c.formats[f] = true
		}
		c.block = p.FormatBlock
		observers := append([]func([]string){}, c.onFormats...)
		c.mu.Unlock()
		for _, fn := range observers {
			fn(p.Formats)
		}

	case bridge.MentionTrigger:
		c.mu.Lock()
		observers := append([]func(string, string){}, c.onTrigger...)
		c.mu.Unlock()
		for _, fn := range observers {
			fn(p.Query, p.Trigger)
		}

	case bridge.MentionHide:
		c.mu.Lock()
		observers := append([]func(){}, c.onHide...)
		c.mu.Unlock()
		for _, fn := range observers {
			fn()
		}

	case entity.Emoji:
		c.mu.Lock()
		observers := append([]func(entity.Emoji){}, c.onEmoji...)
		c.mu.Unlock()
		for _, fn := range observers {
			fn(p)
		}

	default:
		// Read results: hand the raw payload to whoever is waiting.
		c.resolve(n.Channel, n.Payload)
	}
}

// resolve delivers a read result to all waiters on the channel.
func (c *Controller) resolve(channel string, payload []byte) {
	c.mu.Lock()
	waiters := c.waiters[channel]
	delete(c.waiters, channel)
	c.mu.Unlock()
	for _, w := range waiters {
		w <- payload
	}
}

// awaitReady blocks until the surface is ready, the ready budget expires,
// or ctx is cancelled. Commands issued before readiness wait here instead
// of failing or silently no-opping.
func (c *Controller) awaitReady(ctx context.Context) error {
	select {
	case <-c.readyCh:
		return nil
	default:
	}
	select {
	case <-c.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.ReadyTimeout):
		return fmt.Errorf("editor: ready wait exceeded %s: %w", c.cfg.ReadyTimeout, bridge.ErrNotReady)
	}
}

// invoke dispatches a fire-and-forget command after the ready gate.
func (c *Controller) invoke(ctx context.Context, name string, args ...any) error {
	if err := c.awaitReady(ctx); err != nil {
		return err
	}
	return c.inv.Invoke(ctx, bridge.Command{Name: name, Args: args})
}

// request implements the request/poll pattern for reads: invoke a command
// that makes the surface compute and notify a value on resultChannel, then
// wait, bounded by ReadTimeout, for that notification to land.
func (c *Controller) request(ctx context.Context, name string, resultChannel string, args ...any) ([]byte, error) {
	if err := c.awaitReady(ctx); err != nil {
		return nil, err
	}

	ch := make(chan []byte, 1)
	c.mu.Lock()
	c.waiters[resultChannel] = append(c.waiters[resultChannel], ch)
	c.mu.Unlock()

	if err := c.inv.Invoke(ctx, bridge.Command{Name: name, Args: args}); err != nil {
		c.dropWaiter(resultChannel, ch)
		return nil, err
	}

	select {
	case payload := <-ch:
		return payload, nil
	case <-ctx.Done():
		c.dropWaiter(resultChannel, ch)
		return nil, ctx.Err()
	case <-time.After(c.cfg.ReadTimeout):
		c.dropWaiter(resultChannel, ch)
		return nil, fmt.Errorf("editor: %s: no result within %s: %w", name, c.cfg.ReadTimeout, bridge.ErrTimeout)
	}
}

func (c *Controller) dropWaiter(channel string, ch chan []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ws := c.waiters[channel]
	for i, w := range ws {
		if w == ch {
			c.waiters[channel] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}
