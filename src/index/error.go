package index

import "errors"

var (
	ErrMissingProjectState = errors.New("project account missing in receipt")
	ErrMissingRecordState  = errors.New("record account missing in receipt")
	ErrDecodeFailed        = errors.New("failed to decode account")
)
