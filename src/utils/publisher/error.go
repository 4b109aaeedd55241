package publisher

import "errors"

var (
	ErrInvalidCaCert = errors.New("failed to append CA cert to pool")
)
