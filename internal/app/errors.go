package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownSquad = errors.New("unknown squad id")
)
