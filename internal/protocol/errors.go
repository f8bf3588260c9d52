package protocol

import "errors"

// errors for parsing
var (
	ErrInvalid    = errors.New("invalid request")
	ErrIncomplete = errors.New("incomplete request")
	ErrURLTooLong = errors.New("url too long")
)
