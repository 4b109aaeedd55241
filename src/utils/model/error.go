package model

import "errors"

var (
	ErrUnknownDriver = errors.New("unknown database driver")
)
