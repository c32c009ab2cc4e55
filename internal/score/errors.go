package score

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("beat map not found")
	ErrNotOpened = errors.New("score database not opened")
)
