package cmd

import "errors"

var (
	ErrUnknownInstructionName = errors.New("unknown instruction name")
	ErrInvalidMilestone       = errors.New("milestone must be name:amount[:description]")
)
