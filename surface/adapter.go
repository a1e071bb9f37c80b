package surface

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"

	"editbridge/bridge"
	"editbridge/cursor"
	"editbridge/dom"
)

// Adapter owns the surface side of the bridge: the DOM mirror, the trigger
// detector, command dispatch and the event loop.
type Adapter struct {
	cfg     *Config
	applier Applier
	out     *bridge.Coalescer
	logger  *slog.Logger

	detector *cursor.Detector

	mu            sync.Mutex
	started       bool
	ready         bool
	extensions    []string
	engineOptions map[string]any
	appearance    Appearance
	root          *html.Node
	caret         dom.Snapshot
	lastHTML      string
	onReady       []func()

	eventCh  chan Event
	cssWatch *cssWatcher
}

// New creates an Adapter. Register extensions and ready callbacks, then
// call Start.
func New(cfg *Config, applier Applier, out *bridge.Coalescer, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	triggers := make([]rune, 0, len(cfg.Triggers))
	for _, t := range cfg.Triggers {
		r, _ := utf8.DecodeRuneInString(t)
		if r != utf8.RuneError {
			triggers = append(triggers, r)
		}
	}

	root, err := dom.ParseBody("")
	if err != nil {
		// An empty document always parses.
		panic(fmt.Sprintf("surface: parse empty mirror: %v", err))
	}

	return &Adapter{
		cfg:     cfg,
		applier: applier,
		out:     out,
		logger:  logger,
		detector: cursor.NewDetector(cursor.DetectorConfig{
			Triggers:    triggers,
			Window:      cfg.TriggerWindow,
			InsertQuiet: cfg.InsertQuiet,
		}),
		engineOptions: make(map[string]any),
		appearance:    cfg.Appearance,
		root:          root,
		eventCh:       make(chan Event, 256),
	}
}

// OnReady registers a callback fired once, when the shell signals readiness.
// Must be called before Start.
func (a *Adapter) OnReady(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onReady = append(a.onReady, fn)
}

// Start runs the init sequence and the event loop. The ordering is a hard
// contract: CSS before engine init so first paint is styled, cosmetics
// after init so the engine does not clobber them, ready last.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return fmt.Errorf("surface: already started")
	}
	a.started = true
	options := a.engineOptions
	appearance := a.appearance
	a.mu.Unlock()

	css := a.cfg.CustomCSS
	if a.cfg.CustomCSSFile != "" {
		data, err := os.ReadFile(a.cfg.CustomCSSFile)
		if err != nil {
			return fmt.Errorf("surface: read custom css: %w", err)
		}
		css += "\n" + string(data)
	}
	if css != "" {
		if err := a.applier.InjectCSS(ctx, css); err != nil {
			return fmt.Errorf("surface: inject css: %w", err)
		}
	}

	if err := a.applier.InitEngine(ctx, options); err != nil {
		return fmt.Errorf("surface: init engine: %w", err)
	}
	if err := a.applier.SetAppearance(ctx, appearance); err != nil {
		return fmt.Errorf("surface: apply appearance: %w", err)
	}

	if a.cfg.CustomCSSFile != "" {
		w, err := watchCSS(ctx, a.cfg.CustomCSSFile, a.cfg.CustomCSS, a.applier, a.logger)
		if err != nil {
			a.logger.Warn("surface: css watch unavailable", "error", err)
		} else {
			a.cssWatch = w
		}
	}

	go a.loop(ctx)
	return nil
}

// HandleEvent enqueues a surface event for the loop. Called from the CDP
// binding listener; drops with a log when the loop is saturated rather than
// blocking the binding goroutine.
func (a *Adapter) HandleEvent(ev Event) {
	select {
	case a.eventCh <- ev:
	default:
		a.logger.Warn("surface: event queue full, dropping", "kind", ev.Kind)
	}
}

// Ready reports whether the shell has signalled readiness.
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// HTML returns the mirror's current markup.
func (a *Adapter) HTML() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastHTML
}

func (a *Adapter) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if a.cssWatch != nil {
				a.cssWatch.stop()
			}
			a.out.Flush()
			return
		case ev := <-a.eventCh:
			a.dispatch(ctx, ev)
		}
	}
}

func (a *Adapter) dispatch(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventReady:
		a.handleReady()
	case EventInput:
		a.handleInput(ev)
	case EventSelection:
		a.handleSelection(ev)
	case EventQuoteExit:
		a.handleQuoteExit(ctx, ev)
	default:
		a.logger.Warn("surface: unknown event kind", "kind", ev.Kind)
	}
}

func (a *Adapter) handleReady() {
	a.mu.Lock()
	if a.ready {
		a.mu.Unlock()
		return
	}
	a.ready = true
	callbacks := a.onReady
	a.mu.Unlock()

	a.logger.Info("surface: ready")
	for _, fn := range callbacks {
		fn()
	}
}

func (a *Adapter) handleInput(ev Event) {
	root, err := dom.ParseBody(ev.HTML)
	if err != nil {
		a.logger.Warn("surface: unparseable input document", "error", err)
		return
	}

	a.mu.Lock()
	a.root = root
	a.caret = dom.Snapshot{Path: ev.Path.Clone(), Offset: ev.Offset}
	a.lastHTML = ev.HTML
	a.mu.Unlock()

	a.out.Publish(bridge.ChanTextChange, bridge.MarshalPayload(bridge.TextChange{HTML: ev.HTML}))
	a.runDetection()
}

func (a *Adapter) handleSelection(ev Event) {
	a.mu.Lock()
	a.caret = dom.Snapshot{Path: ev.Path.Clone(), Offset: ev.Offset}
	a.mu.Unlock()

	a.out.Publish(bridge.ChanDecorationState, bridge.MarshalPayload(bridge.DecorationState{
		Formats:     ev.Formats,
		FormatBlock: ev.FormatBlock,
	}))
	a.runDetection()
}

// runDetection re-evaluates the trigger state at the current caret and
// publishes a trigger or hide signal. The text window is oversized so the
// detector can see the character preceding a trigger at its budget edge.
func (a *Adapter) runDetection() {
	a.mu.Lock()
	text := dom.TextBefore(a.root, a.caret, 2*a.cfg.TriggerWindow)
	pos := utf8.RuneCountInString(text)
	ev, hide := a.detector.Scan(text, pos)
	a.mu.Unlock()
	switch {
	case ev != nil:
		a.out.Publish(bridge.ChanMentionTrigger, bridge.MarshalPayload(bridge.MentionTrigger{
			Query:   ev.Query,
			Trigger: string(ev.Trigger),
		}))
	case hide:
		a.out.Publish(bridge.ChanMentionHide, bridge.MarshalPayload(bridge.MentionHide{}))
	}
}

// handleQuoteExit restructures the document after the shell suppressed a
// native Enter inside an empty blockquote block. The mirror is the source
// of truth: if it disagrees that the block is empty, the native newline is
// replayed instead.
func (a *Adapter) handleQuoteExit(ctx context.Context, ev Event) {
	a.mu.Lock()
	if ev.HTML != "" {
		if root, err := dom.ParseBody(ev.HTML); err == nil {
			a.root = root
			a.lastHTML = ev.HTML
		}
	}
	a.caret = dom.Snapshot{Path: ev.Path.Clone(), Offset: ev.Offset}
	root, caret := a.root, a.caret
	a.mu.Unlock()

	snap, ok := dom.ExitBlockquote(root, caret)
	if !ok {
		if err := a.applier.ExecCommand(ctx, "insertParagraph", ""); err != nil {
			a.logger.Warn("surface: replay native enter", "error", err)
		}
		return
	}

	htmlOut := dom.RenderChildren(root)
	a.mu.Lock()
	a.caret = snap
	a.lastHTML = htmlOut
	a.mu.Unlock()

	if err := a.applier.ApplyDocument(ctx, htmlOut, snap); err != nil {
		a.logger.Error("surface: apply quote exit", "error", err)
		return
	}
	if err := a.applier.SaveCheckpoint(ctx); err != nil {
		a.logger.Warn("surface: save checkpoint", "error", err)
	}
	a.out.Publish(bridge.ChanTextChange, bridge.MarshalPayload(bridge.TextChange{HTML: htmlOut}))
}
