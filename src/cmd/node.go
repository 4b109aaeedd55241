package cmd

import (
	"github.com/colabio/crowdfund/src/node"
	"github.com/colabio/crowdfund/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(nodeCmd)
}

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run the ledger with the REST API, indexer and event publisher",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := node.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		// The controller stops by itself when one of its components fails
		select {
		case <-controller.Ctx.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished node command")
		return
	},
}
