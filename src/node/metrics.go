package node

import (
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/utils/monitoring"
)

// Counts successful instructions by type
func countInstructions(monitor monitoring.Monitor) func(*ledger.Receipt) {
	return func(receipt *ledger.Receipt) {
		if receipt.Failed() {
			return
		}

		instruction, err := program.Unpack(receipt.Data)
		if err != nil {
			return
		}

		state := &monitor.GetReport().Bank.State
		switch instruction.Tag() {
		case program.TagInitializeProject:
			state.InitializeProject.Inc()
		case program.TagContribute:
			state.Contribute.Inc()
		case program.TagValidateMilestone:
			state.ValidateMilestone.Inc()
		case program.TagReleaseFunds:
			state.ReleaseFunds.Inc()
		case program.TagCancelProject:
			state.CancelProject.Inc()
		case program.TagVote:
			state.Vote.Inc()
		}
	}
}
