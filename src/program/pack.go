package program

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encodes an instruction into the layout Unpack reads
func Pack(instruction Instruction) (out []byte, err error) {
	if instruction == nil {
		err = ErrUnknownInstruction
		return
	}
	out = []byte{byte(instruction.Tag())}

	switch ix := instruction.(type) {
	case InitializeProject:
		return packInitializeProject(out, &ix)
	case *InitializeProject:
		return packInitializeProject(out, ix)
	case Contribute:
		out = binary.LittleEndian.AppendUint64(out, ix.Amount)
	case *Contribute:
		out = binary.LittleEndian.AppendUint64(out, ix.Amount)
	case ValidateMilestone:
		out = append(out, ix.MilestoneIndex)
	case *ValidateMilestone:
		out = append(out, ix.MilestoneIndex)
	case ReleaseFunds:
		out = append(out, ix.MilestoneIndex)
	case *ReleaseFunds:
		out = append(out, ix.MilestoneIndex)
	case CancelProject, *CancelProject:
	case Vote:
		out = append(out, packBool(ix.Approve))
	case *Vote:
		out = append(out, packBool(ix.Approve))
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownInstruction, instruction)
	}
	return
}

func packInitializeProject(out []byte, ix *InitializeProject) (_ []byte, err error) {
	if len(ix.Milestones) > math.MaxUint8 {
		err = ErrTooManyMilestones
		return
	}

	for _, s := range []string{ix.Title, ix.Description} {
		out, err = appendString(out, s)
		if err != nil {
			return
		}
	}

	out = binary.LittleEndian.AppendUint64(out, ix.GoalAmount)
	out = binary.LittleEndian.AppendUint64(out, ix.Duration)
	out = append(out, uint8(len(ix.Milestones)))

	for _, milestone := range ix.Milestones {
		out, err = appendString(out, milestone.Name)
		if err != nil {
			return
		}
		out, err = appendString(out, milestone.Description)
		if err != nil {
			return
		}
		out = binary.LittleEndian.AppendUint64(out, milestone.Amount)
	}

	return out, nil
}

func appendString(out []byte, s string) ([]byte, error) {
	if uint64(len(s)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: string too long", ErrMalformedInstruction)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s)))
	return append(out, s...), nil
}

func packBool(v bool) byte {
	if v {
		return 1
	}
	return 0
}
