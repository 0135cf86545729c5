package ledger

import "errors"

// Sentinel kinds for engine rejections. These allow errors.Is from callers
// so the gateway can compose distinct user-facing messages.
var (
	// ErrNotANumber rejects a sample observation that is negative (the
	// gateway maps unparsable input to the same reason).
	ErrNotANumber = errors.New("total samples must be a non-negative number")

	// ErrNotAnIncrease rejects a sample observation that does not exceed
	// the stored running total.
	ErrNotAnIncrease = errors.New("total samples did not increase")
)
