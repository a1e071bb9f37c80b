package history

import (
	"context"
	"encoding/json"
	"log/slog"

	"editbridge/bridge"
)

// Sink journals confirmed content changes. Attach it to the bridge router
// next to the controller; append failures are logged, never propagated, so
// a slow or broken journal cannot stall editing.
type Sink struct {
	store     *Store
	sessionID string
	logger    *slog.Logger
}

// NewSink creates a Sink journalling under the given session ID.
func NewSink(store *Store, sessionID string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{store: store, sessionID: sessionID, logger: logger}
}

// HandleNotification implements bridge.Listener.
func (s *Sink) HandleNotification(ctx context.Context, n bridge.Notification) {
	if n.Channel != bridge.ChanTextChange {
		return
	}
	var tc bridge.TextChange
	if err := json.Unmarshal(n.Payload, &tc); err != nil {
		s.logger.Warn("history: malformed content payload", "error", err)
		return
	}
	id, err := s.store.Append(ctx, s.sessionID, tc.HTML)
	if err != nil {
		s.logger.Error("history: append failed", "error", err)
		return
	}
	if id != "" {
		s.logger.Debug("history: revision stored", "revision", id)
	}
}
