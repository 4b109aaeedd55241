package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/colabio/crowdfund/src/program"

	"github.com/spf13/cobra"
)

func init() {
	flags := encodeCmd.Flags()
	flags.StringVar(&encodeArgs.Title, "title", "", "project title")
	flags.StringVar(&encodeArgs.Description, "description", "", "project description")
	flags.Uint64Var(&encodeArgs.Goal, "goal", 0, "goal in lamports")
	flags.Uint64Var(&encodeArgs.Duration, "duration", 0, "duration in seconds")
	flags.StringArrayVar(&encodeArgs.Milestones, "milestone", nil, "milestone as name:amount[:description], repeatable")
	flags.Uint64Var(&encodeArgs.Amount, "amount", 0, "contributed lamports")
	flags.Uint8Var(&encodeArgs.Index, "index", 0, "milestone index")
	flags.BoolVar(&encodeArgs.Approve, "approve", false, "approve the project")
	RootCmd.AddCommand(encodeCmd)
}

type encodeFlags struct {
	Title       string
	Description string
	Goal        uint64
	Duration    uint64
	Milestones  []string
	Amount      uint64
	Index       uint8
	Approve     bool
}

var encodeArgs encodeFlags

var encodeCmd = &cobra.Command{
	Use:       "encode <instruction>",
	Short:     "Print the hex encoded instruction payload",
	Args:      cobra.ExactArgs(1),
	ValidArgs: instructionNames(),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ix, err := encodeArgs.instruction(args[0])
		if err != nil {
			return
		}

		data, err := program.Pack(ix)
		if err != nil {
			return
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
		return
	},
}

func instructionNames() (out []string) {
	for tag := program.TagInitializeProject; tag <= program.TagVote; tag++ {
		out = append(out, tag.String())
	}
	return
}

func (self *encodeFlags) instruction(name string) (out program.Instruction, err error) {
	switch name {
	case program.TagInitializeProject.String():
		ix := program.InitializeProject{
			Title:       self.Title,
			Description: self.Description,
			GoalAmount:  self.Goal,
			Duration:    self.Duration,
		}
		for _, s := range self.Milestones {
			var milestone program.Milestone
			milestone, err = parseMilestone(s)
			if err != nil {
				return
			}
			ix.Milestones = append(ix.Milestones, milestone)
		}
		out = ix
	case program.TagContribute.String():
		out = program.Contribute{Amount: self.Amount}
	case program.TagValidateMilestone.String():
		out = program.ValidateMilestone{MilestoneIndex: self.Index}
	case program.TagReleaseFunds.String():
		out = program.ReleaseFunds{MilestoneIndex: self.Index}
	case program.TagCancelProject.String():
		out = program.CancelProject{}
	case program.TagVote.String():
		out = program.Vote{Approve: self.Approve}
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownInstructionName, name)
	}
	return
}

func parseMilestone(s string) (out program.Milestone, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		err = fmt.Errorf("%w: %s", ErrInvalidMilestone, s)
		return
	}

	out.Name = parts[0]
	out.Amount, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidMilestone, err)
		return
	}
	if len(parts) == 3 {
		out.Description = parts[2]
	}
	return
}
