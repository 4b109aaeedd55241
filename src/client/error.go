package client

import "errors"

var (
	ErrInvalidKeypair = errors.New("invalid keypair")
)
