package cmd

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/colabio/crowdfund/src/program"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(decodeCmd)
}

type decodeOutput struct {
	Instruction string              `json:"instruction"`
	Args        program.Instruction `json:"args"`
}

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a hex encoded instruction payload into JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		out, err := decode(args[0])
		if err != nil {
			return
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func decode(s string) (out *decodeOutput, err error) {
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return
	}

	ix, err := program.Unpack(data)
	if err != nil {
		return
	}

	return &decodeOutput{Instruction: ix.Tag().String(), Args: ix}, nil
}
