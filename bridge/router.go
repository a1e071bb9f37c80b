package bridge

import (
	"context"
	"log/slog"
	"sync"
)

// Router fans notifications out to registered listeners: the document
// controller, an optional revision sink, debug sinks. Delivery is in
// registration order and synchronous; listeners must not block.
type Router struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *slog.Logger
}

// NewRouter creates a Router delivering to the given listeners.
func NewRouter(logger *slog.Logger, listeners ...Listener) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{listeners: listeners, logger: logger}
}

// Attach adds a listener.
func (r *Router) Attach(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// DebugListener logs every notification it sees. Attach it during
// development to watch bridge traffic.
type DebugListener struct {
	Logger *slog.Logger
}

// HandleNotification implements Listener.
func (d DebugListener) HandleNotification(_ context.Context, n Notification) {
	d.Logger.Debug("bridge: notification",
		"channel", n.Channel, "seq", n.Seq, "bytes", len(n.Payload))
}

// Notify implements Notifier. It never fails: notifications are
// fire-and-forget, and a surface must not care whether anyone listens.
func (r *Router) Notify(ctx context.Context, n Notification) error {
	r.mu.RLock()
	listeners := r.listeners
	r.mu.RUnlock()

	if len(listeners) == 0 {
		r.logger.Debug("bridge: notification with no listeners", "channel", n.Channel)
		return nil
	}
	for _, l := range listeners {
		l.HandleNotification(ctx, n)
	}
	return nil
}
