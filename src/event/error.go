package event

import "errors"

var (
	ErrInvalidNumber = errors.New("field is not an unsigned 64 bit number")
)
