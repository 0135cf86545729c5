package repository

import "errors"

// Sentinel kinds for ledger store errors.
var (
	ErrReadDocument  = errors.New("ledger document unreadable")
	ErrWriteDocument = errors.New("ledger document unwritable")
)
