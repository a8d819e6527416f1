package reactor

import "errors"

// Domain errors for reactor operations.
var (
	// ErrUnknownTopic indicates a subscription to a topic outside the fixed set.
	ErrUnknownTopic = errors.New("reactor: unknown event topic")

	// ErrDecode indicates malformed serialized state; Restore leaves the
	// reactor untouched when it returns this.
	ErrDecode = errors.New("reactor: malformed snapshot text")
)
