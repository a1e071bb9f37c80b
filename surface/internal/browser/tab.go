package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Tab wraps the Rod page hosting the editor shell. It stays agnostic of the
// bridge protocol: callers register a binding handler for raw payloads and
// evaluate page functions by JS expression.
type Tab struct {
	Page    *rod.Page
	PageURL string
}

// OpenTab creates a tab and navigates it to the shell URL.
func OpenTab(ctx context.Context, mgr *Manager, pageURL string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, PageURL: pageURL}, nil
}

// Listen registers a CDP binding with the given name and streams every
// payload the page sends through it to handler. The handler runs on the
// event goroutine; it must not block.
func (t *Tab) Listen(ctx context.Context, binding string, handler func(payload string)) error {
	if err := (proto.RuntimeAddBinding{Name: binding}).Call(t.Page); err != nil {
		return fmt.Errorf("browser: add binding: %w", err)
	}
	go t.Page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != binding {
			return
		}
		handler(e.Payload)
	})()
	return nil
}

// Eval evaluates a JS function in the page with the given arguments.
func (t *Tab) Eval(ctx context.Context, js string, args ...any) error {
	_, err := t.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("browser: eval: %w", err)
	}
	return nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
