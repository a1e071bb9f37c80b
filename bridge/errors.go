package bridge

import "errors"

var (
	// ErrNotReady means an operation was attempted before the surface
	// signalled readiness. Callers retry; it surfaces only when the retry
	// budget is exhausted.
	ErrNotReady = errors.New("bridge: surface not ready")

	// ErrUnavailable means the underlying channel or transport is missing,
	// e.g. the surface is not yet attached. Transient: invokes are retried
	// with backoff rather than dropped.
	ErrUnavailable = errors.New("bridge: channel unavailable")

	// ErrTimeout means a read operation's request/poll wait exceeded its
	// bound. Surfaced explicitly so callers can distinguish "empty result"
	// from "no answer came back".
	ErrTimeout = errors.New("bridge: read timed out")

	// ErrInvalidArgument marks out-of-range or malformed command arguments,
	// rejected synchronously before dispatch.
	ErrInvalidArgument = errors.New("bridge: invalid argument")
)
