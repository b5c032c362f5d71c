// Package channels holds small generic helpers for sending on channels that
// may be full or already closed, plus a fan-out Broadcaster.
package channels

import "errors"

// Send errors. A send on a closed channel is reported, never panics.
var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrChannelTimeout = errors.New("send timeout")
	ErrChannelFull    = errors.New("channel full")
)
