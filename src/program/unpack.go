package program

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

const (
	// Fixed positions of InitializeProject's numeric fields, relative to what follows the description
	goalOffset           = 0
	durationOffset       = 8
	milestoneCountOffset = 16
	milestonesOffset     = 17
)

// Decodes instruction data. Never panics, whatever the input.
func Unpack(input []byte) (out Instruction, err error) {
	if len(input) == 0 {
		err = fmt.Errorf("%w: empty instruction data", ErrMalformedInstruction)
		return
	}

	tag, rest := InstructionTag(input[0]), input[1:]
	switch tag {
	case TagInitializeProject:
		return unpackInitializeProject(rest)
	case TagContribute:
		amount, err := readU64(rest, 0)
		if err != nil {
			return nil, err
		}
		return Contribute{Amount: amount}, nil
	case TagValidateMilestone:
		index, err := readU8(rest, 0)
		if err != nil {
			return nil, err
		}
		return ValidateMilestone{MilestoneIndex: index}, nil
	case TagReleaseFunds:
		index, err := readU8(rest, 0)
		if err != nil {
			return nil, err
		}
		return ReleaseFunds{MilestoneIndex: index}, nil
	case TagCancelProject:
		return CancelProject{}, nil
	case TagVote:
		approve, err := readU8(rest, 0)
		if err != nil {
			return nil, err
		}
		return Vote{Approve: approve != 0}, nil
	default:
		err = fmt.Errorf("%w: tag %d", ErrUnknownInstruction, input[0])
		return
	}
}

func unpackInitializeProject(input []byte) (out Instruction, err error) {
	var ix InitializeProject

	ix.Title, input, err = readString(input)
	if err != nil {
		return
	}

	ix.Description, input, err = readString(input)
	if err != nil {
		return
	}

	ix.GoalAmount, err = readU64(input, goalOffset)
	if err != nil {
		return
	}

	ix.Duration, err = readU64(input, durationOffset)
	if err != nil {
		return
	}

	count, err := readU8(input, milestoneCountOffset)
	if err != nil {
		return
	}

	ix.Milestones = make([]Milestone, 0, count)
	offset := milestonesOffset
	for i := 0; i < int(count); i++ {
		var milestone Milestone

		milestone.Name, _, err = readString(tail(input, offset))
		if err != nil {
			return
		}
		offset += len(milestone.Name) + 4

		milestone.Description, _, err = readString(tail(input, offset))
		if err != nil {
			return
		}
		offset += len(milestone.Description) + 4

		milestone.Amount, err = readU64(input, offset)
		if err != nil {
			return
		}
		offset += 8

		ix.Milestones = append(ix.Milestones, milestone)
	}

	out = ix
	return
}

// Empty when offset is past the end
func tail(input []byte, offset int) []byte {
	if offset < 0 || offset > len(input) {
		return nil
	}
	return input[offset:]
}

func readString(input []byte) (out string, rest []byte, err error) {
	if len(input) < 4 {
		err = fmt.Errorf("%w: string length prefix", ErrMalformedInstruction)
		return
	}

	length := uint64(binary.LittleEndian.Uint32(input))
	if uint64(len(input)-4) < length {
		err = fmt.Errorf("%w: string shorter than its length prefix", ErrMalformedInstruction)
		return
	}

	end := 4 + int(length)
	if !utf8.Valid(input[4:end]) {
		err = fmt.Errorf("%w: string is not valid UTF-8", ErrMalformedInstruction)
		return
	}

	out = string(input[4:end])
	rest = input[end:]
	return
}

func readU64(input []byte, offset int) (out uint64, err error) {
	if offset < 0 || len(input) < offset+8 {
		err = fmt.Errorf("%w: u64 at offset %d", ErrMalformedInstruction, offset)
		return
	}
	out = binary.LittleEndian.Uint64(input[offset : offset+8])
	return
}

func readU8(input []byte, offset int) (out uint8, err error) {
	if offset < 0 || len(input) <= offset {
		err = fmt.Errorf("%w: byte at offset %d", ErrMalformedInstruction, offset)
		return
	}
	out = input[offset]
	return
}
