package cmd

import (
	"encoding/hex"
	"encoding/json"

	"github.com/colabio/crowdfund/src/client"

	"github.com/spf13/cobra"
)

func init() {
	keygenCmd.Flags().StringVar(&keygenSeed, "seed", "", "hex encoded 32 byte seed, random if empty")
	RootCmd.AddCommand(keygenCmd)
}

var keygenSeed string

type keygenOutput struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ed25519 keypair, printed as base58",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var keypair *client.Keypair
		if keygenSeed == "" {
			keypair, err = client.NewKeypair()
		} else {
			var seed []byte
			seed, err = hex.DecodeString(keygenSeed)
			if err != nil {
				return
			}
			keypair, err = client.KeypairFromSeed(seed)
		}
		if err != nil {
			return
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(keygenOutput{
			Pubkey: keypair.Pubkey.String(),
			Secret: keypair.Secret(),
		})
	},
}
