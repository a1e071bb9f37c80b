package surface

import (
	"context"
	"fmt"
	"log/slog"

	"editbridge/bridge"
	"editbridge/idgen"
	"editbridge/surface/internal/browser"
	"editbridge/surface/internal/shell"
)

// Session ties the pieces of one live editing surface together: the shell
// server, the browser, the editor tab, and the adapter.
type Session struct {
	ID      string
	cfg     *Config
	logger  *slog.Logger
	shell   *shell.Server
	mgr     *browser.Manager
	tab     *browser.Tab
	adapter *Adapter
}

// NewSession creates an unstarted Session whose notifications flow into the
// given router, coalesced per channel.
func NewSession(cfg *Config, router *bridge.Router, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	coal := bridge.NewCoalescer(router, logger,
		bridge.WithWindow(bridge.ChanTextChange, cfg.Debounce.Content),
		bridge.WithWindow(bridge.ChanDecorationState, cfg.Debounce.State),
	)

	s := &Session{
		ID:     idgen.New(),
		cfg:    cfg,
		logger: logger,
		shell:  shell.NewServer(cfg.Listen, logger),
		mgr: browser.NewManager(browser.Config{
			RemoteURL: cfg.Browser.Remote,
			Headless:  cfg.Browser.Mode != "headful",
			Logger:    logger,
		}),
	}
	s.adapter = New(cfg, nil, coal, logger)
	return s
}

// Adapter exposes the adapter for extension registration, ready callbacks
// and use as the controller's Invoker.
func (s *Session) Adapter() *Adapter { return s.adapter }

// Start boots the shell server and browser, opens the editor tab, wires the
// event binding, and runs the adapter init sequence.
func (s *Session) Start(ctx context.Context) error {
	if err := s.shell.Start(ctx); err != nil {
		return err
	}
	if _, err := s.mgr.Start(ctx); err != nil {
		return err
	}

	tab, err := browser.OpenTab(ctx, s.mgr, s.shell.URL())
	if err != nil {
		return err
	}
	s.tab = tab
	s.adapter.applier = newRodApplier(tab)

	if err := tab.Listen(ctx, Binding, func(payload string) {
		ev, err := decodeEvent(payload)
		if err != nil {
			s.logger.Warn("surface: dropped malformed event", "error", err)
			return
		}
		s.adapter.HandleEvent(ev)
	}); err != nil {
		return err
	}

	if err := s.adapter.Start(ctx); err != nil {
		return err
	}

	s.logger.Info("surface: session started", "session", s.ID, "url", s.shell.URL())
	return nil
}

// Close tears the session down: tab, browser, shell server.
func (s *Session) Close(ctx context.Context) error {
	var firstErr error
	if s.tab != nil {
		if err := s.tab.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("surface: close tab: %w", err)
		}
	}
	if err := s.mgr.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("surface: close browser: %w", err)
	}
	if err := s.shell.Close(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("surface: close shell: %w", err)
	}
	return firstErr
}
